package utils

import (
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()
	// 自定义验证错误缓存
	validationErrorsCache = make(map[string]string)
)

// 初始化验证器
func init() {
	// 与gin的ShouldBind共用binding标签
	validate.SetTagName("binding")

	// 注册自定义验证规则
	validate.RegisterValidation("password", validatePassword)
	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("modelyear", validateModelYear)
}

// Validator 验证器结构
type Validator struct {
	validator *validator.Validate
}

// NewValidator 创建新的验证器实例
func NewValidator() *Validator {
	return &Validator{
		validator: validate,
	}
}

// Validate 验证结构体
func (v *Validator) Validate(obj interface{}) error {
	if err := v.validator.Struct(obj); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// formatValidationErrors 格式化验证错误信息
func formatValidationErrors(errors []validator.FieldError) error {
	errorMap := make(map[string]string)

	for _, err := range errors {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		// 先尝试从缓存中获取错误信息
		cacheKey := fmt.Sprintf("%s_%s", field, tag)
		if msg, exists := validationErrorsCache[cacheKey]; exists {
			errorMap[field] = msg
			continue
		}

		// 生成自定义错误信息
		msg := getErrorMessage(field, tag, param)
		validationErrorsCache[cacheKey] = msg
		errorMap[field] = msg
	}

	return &ValidationError{Errors: errorMap}
}

// ValidationError 验证错误结构
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("Validation failed: %v", ve.Errors)
}

// getErrorMessage 获取错误消息
func getErrorMessage(field, tag, param string) string {
	errorMessages := map[string]string{
		"required":  "%s is required",
		"email":     "%s is not a valid email address",
		"min":       "%s must be at least %s characters",
		"max":       "%s must be at most %s characters",
		"gt":        "%s must be greater than %s",
		"gte":       "%s must be greater than or equal to %s",
		"lt":        "%s must be less than %s",
		"lte":       "%s must be less than or equal to %s",
		"oneof":     "%s must be one of: %s",
		"numeric":   "%s must be a number",
		"password":  "%s must contain upper and lower case letters, a digit and a special character",
		"username":  "%s may only contain letters, digits and underscores, starting with a letter",
		"modelyear": "%s is not a valid model year",
	}

	template, exists := errorMessages[tag]
	if !exists {
		return fmt.Sprintf("%s failed validation", field)
	}

	return fmt.Sprintf(template, field, param)
}

// 自定义验证规则

// validatePassword 密码验证
func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasNumber && hasSpecial
}

// validateUsername 用户名验证
func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()

	if len(username) < 3 || len(username) > 20 {
		return false
	}

	// 只能包含字母、数字和下划线
	matched, _ := regexp.MatchString(`^[a-zA-Z][a-zA-Z0-9_]*$`, username)
	return matched
}

// validateModelYear 出厂年份验证（1950 ~ 次年）
func validateModelYear(fl validator.FieldLevel) bool {
	year := int(fl.Field().Int())
	if year == 0 {
		return true // 允许为空
	}
	return year >= 1950 && year <= time.Now().Year()+1
}

// BindAndValidate 绑定并验证请求
func BindAndValidate(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return err
	}

	v := NewValidator()
	if err := v.Validate(obj); err != nil {
		return err
	}

	return nil
}

// ValidateEmail 验证邮箱格式
func ValidateEmail(email string) bool {
	if email == "" {
		return false
	}
	emailRegex := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	matched, _ := regexp.MatchString(emailRegex, email)
	return matched
}

// SanitizeString 清理字符串（防止XSS）
func SanitizeString(input string) string {
	// 移除JavaScript代码
	jsRegex := regexp.MustCompile(`<script[^>]*>.*?</script>`)
	cleaned := jsRegex.ReplaceAllString(input, "")

	// 移除HTML标签
	reg := regexp.MustCompile(`<[^>]*>`)
	cleaned = reg.ReplaceAllString(cleaned, "")

	return cleaned
}

// LimitStringLength 限制字符串长度
func LimitStringLength(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	return input[:maxLength]
}
