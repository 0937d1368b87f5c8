package esewa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrConfigInvalid      = errors.New("esewa config invalid")
	ErrRequestFailed      = errors.New("esewa request failed")
	ErrResponseInvalid    = errors.New("esewa response invalid")
	ErrVerifyFailed       = errors.New("esewa transaction verify failed")
	ErrMerchantRefInvalid = errors.New("esewa merchant reference invalid")
)

// Config eSewa 网关配置
type Config struct {
	GatewayURL   string // 收银台地址
	VerifyURL    string // 交易核验地址（transrec）
	MerchantCode string // 商户号（scd）
	SuccessURL   string // 支付成功跳转地址
	FailureURL   string // 支付失败跳转地址
	RefPrefix    string // 商户引用号前缀
	Timeout      time.Duration
}

// CreateInput 发起支付输入
type CreateInput struct {
	OrderID uint
	Amount  string // 商品金额，保留两位小数
}

// CreateResult 发起支付结果
// eSewa 旧版收银台为浏览器端表单提交，服务端只负责拼装参数
type CreateResult struct {
	PaymentURL  string
	MerchantRef string
	Params      map[string]string
}

// VerifyInput 交易核验输入
type VerifyInput struct {
	MerchantRef string // 下单时的 pid
	Amount      string // 订单金额
	RefID       string // eSewa 回调返回的 refId
}

// merchantRefPattern 商户引用号格式：PREFIX-订单ID-时间戳
var merchantRefPattern = regexp.MustCompile(`^(.+)-(\d+)-\d+$`)

// ValidateConfig 校验网关配置完整性
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.GatewayURL) == "" {
		return fmt.Errorf("%w: gateway_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.VerifyURL) == "" {
		return fmt.Errorf("%w: verify_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.MerchantCode) == "" {
		return fmt.Errorf("%w: merchant_code is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SuccessURL) == "" {
		return fmt.Errorf("%w: success_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.FailureURL) == "" {
		return fmt.Errorf("%w: failure_url is required", ErrConfigInvalid)
	}
	return nil
}

// BuildMerchantRef 生成商户引用号
func BuildMerchantRef(prefix string, orderID uint) string {
	p := strings.TrimSpace(prefix)
	if p == "" {
		p = "ORDER"
	}
	return fmt.Sprintf("%s-%d-%d", p, orderID, time.Now().Unix())
}

// ParseMerchantRef 从商户引用号解析订单 ID
func ParseMerchantRef(ref string) (uint, error) {
	matches := merchantRefPattern.FindStringSubmatch(strings.TrimSpace(ref))
	if len(matches) != 3 {
		return 0, ErrMerchantRefInvalid
	}
	id, err := strconv.ParseUint(matches[2], 10, 64)
	if err != nil || id == 0 {
		return 0, ErrMerchantRefInvalid
	}
	return uint(id), nil
}

// CreatePayment 拼装 eSewa 收银台表单参数
// 税费、服务费、配送费固定为 0，总额等于商品金额
func CreatePayment(cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if input.OrderID == 0 || strings.TrimSpace(input.Amount) == "" {
		return nil, ErrConfigInvalid
	}
	ref := BuildMerchantRef(cfg.RefPrefix, input.OrderID)
	params := map[string]string{
		"amt":   input.Amount,
		"txAmt": "0",
		"psc":   "0",
		"pdc":   "0",
		"tAmt":  input.Amount,
		"pid":   ref,
		"scd":   cfg.MerchantCode,
		"su":    cfg.SuccessURL,
		"fu":    cfg.FailureURL,
	}
	return &CreateResult{
		PaymentURL:  strings.TrimSpace(cfg.GatewayURL),
		MerchantRef: ref,
		Params:      params,
	}, nil
}

// VerifyTransaction 向 eSewa 核验交易
// transrec 接口返回 XML，响应体包含 Success 即核验通过
func VerifyTransaction(ctx context.Context, cfg *Config, input VerifyInput) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if strings.TrimSpace(input.MerchantRef) == "" ||
		strings.TrimSpace(input.Amount) == "" ||
		strings.TrimSpace(input.RefID) == "" {
		return ErrVerifyFailed
	}

	values := url.Values{}
	values.Set("amt", strings.TrimSpace(input.Amount))
	values.Set("scd", strings.TrimSpace(cfg.MerchantCode))
	values.Set("rid", strings.TrimSpace(input.RefID))
	values.Set("pid", strings.TrimSpace(input.MerchantRef))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSpace(cfg.VerifyURL), strings.NewReader(values.Encode()))
	if err != nil {
		return ErrRequestFailed
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return ErrRequestFailed
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ErrRequestFailed
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrResponseInvalid
	}
	if !strings.Contains(strings.ToLower(string(body)), "success") {
		return ErrVerifyFailed
	}
	return nil
}
