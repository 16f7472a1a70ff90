package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"sync"
	"time"

	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/config"
	"github.com/christopher7777777/Christopher-Pokharel-RIDEHUB-sub001/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	redisCtx = context.Background()
)

// EmailConfig 邮件配置
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// AuthConfig 认证配置
type AuthConfig struct {
	MaxLoginAttempts     int           // 最大登录失败次数
	LoginBlockDuration   time.Duration // 登录封禁时长
	RegisterLimitPerHour int           // 每小时最大注册次数
}

// AuthService 认证服务
type AuthService struct {
	jwtService  *config.JWTService
	emailConfig *EmailConfig
	authConfig  *AuthConfig
	// 邮件发送队列（goroutine异步处理）
	emailQueue   chan *EmailTask
	emailWorkers int
	// 登录失败记录队列
	loginFailureQueue chan *LoginFailure
	// IP封禁检查缓存
	ipBlockCache sync.Map // IP -> BlockInfo
}

// EmailTask 邮件发送任务
type EmailTask struct {
	Type      string // "welcome", "password_reset", "password_changed"
	ToEmail   string
	Subject   string
	Body      string
	HTMLBody  string
	Timestamp time.Time
	Retries   int
}

// LoginFailure 登录失败记录
type LoginFailure struct {
	Email     string
	IP        string
	Timestamp time.Time
	UserAgent string
}

// BlockInfo IP封禁信息
type BlockInfo struct {
	UnblockTime time.Time
	Reason      string
}

// NewAuthService 创建认证服务实例
func NewAuthService() *AuthService {
	emailConfig := &EmailConfig{
		SMTPHost:     config.GetEnv("SMTP_HOST", ""),
		SMTPPort:     config.GetEnvInt("SMTP_PORT", 587),
		SMTPUser:     config.GetEnv("SMTP_USER", ""),
		SMTPPassword: config.GetEnv("SMTP_PASSWORD", ""),
		FromEmail:    config.GetEnv("FROM_EMAIL", "noreply@ridehub.com"),
		FromName:     config.GetEnv("FROM_NAME", "RideHub"),
	}

	authConfig := &AuthConfig{
		MaxLoginAttempts:     5,
		LoginBlockDuration:   15 * time.Minute,
		RegisterLimitPerHour: 3,
	}

	authService := &AuthService{
		jwtService:        config.GetJWTService(),
		emailConfig:       emailConfig,
		authConfig:        authConfig,
		emailQueue:        make(chan *EmailTask, 1000),
		emailWorkers:      5,
		loginFailureQueue: make(chan *LoginFailure, 1000),
	}

	// 启动邮件发送worker池
	authService.startEmailWorkers()

	// 启动登录失败处理worker
	authService.startLoginFailureWorker()

	// 启动IP封禁检查清理goroutine
	go authService.cleanupIPBlocks()

	return authService
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=100"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ==================== 注册相关方法 ====================

// Register 用户注册
func (as *AuthService) Register(req *RegisterRequest, clientIP string) (*models.User, string, error) {
	// 1. 检查IP是否被封禁
	if as.isIPBlocked(clientIP) {
		return nil, "", errors.New("your IP has been blocked due to suspicious activity")
	}

	// 2. 检查用户名是否已存在
	var existingUser models.User
	if err := config.DB.Where("username = ?", req.Username).First(&existingUser).Error; err == nil {
		return nil, "", errors.New("username already exists")
	}

	// 3. 检查邮箱是否已存在
	if err := config.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return nil, "", errors.New("email already exists")
	}

	// 4. 检查注册频率限制（使用Redis）
	if config.RedisClient != nil {
		registerLimitKey := fmt.Sprintf("register:limit:%s", clientIP)
		count, _ := config.RedisClient.Get(redisCtx, registerLimitKey).Int64()
		if count >= int64(as.authConfig.RegisterLimitPerHour) {
			as.recordSuspiciousActivity(clientIP, "too many registration attempts")
			return nil, "", fmt.Errorf("too many registration attempts, please try again later")
		}
	}

	// 5. 密码加密
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	// 6. 创建用户（注册只能是普通用户，经销商账号由后台开通）
	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Phone:    req.Phone,
		Role:     models.RoleUser,
		Status:   1,
	}

	if err := config.DB.Create(&user).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	// 7. 增加注册计数
	if config.RedisClient != nil {
		registerLimitKey := fmt.Sprintf("register:limit:%s", clientIP)
		config.RedisClient.Incr(redisCtx, registerLimitKey)
		config.RedisClient.Expire(redisCtx, registerLimitKey, time.Hour)
	}

	// 8. 生成JWT token
	token, err := as.jwtService.GenerateToken(user.ID, user.Username, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	// 9. 异步发送欢迎邮件
	go func() {
		as.queueEmail(&EmailTask{
			Type:      "welcome",
			ToEmail:   req.Email,
			Subject:   "Welcome to RideHub",
			Body:      fmt.Sprintf("Welcome %s! Your account has been created successfully.", req.Username),
			Timestamp: time.Now(),
		})
	}()

	// 10. 记录注册事件（用于统计分析）
	go func() {
		if config.RedisClient != nil {
			config.RedisClient.Incr(redisCtx, "stats:register:total")
			config.RedisClient.Incr(redisCtx, fmt.Sprintf("stats:register:%s", time.Now().Format("2006-01-02")))
			config.RedisClient.XAdd(redisCtx, &redis.XAddArgs{
				Stream: "user_events",
				Values: map[string]interface{}{
					"event":     "register",
					"user_id":   user.ID,
					"email":     user.Email,
					"username":  user.Username,
					"ip":        clientIP,
					"timestamp": time.Now().Unix(),
				},
			})
		}
	}()

	return &user, token, nil
}

// ==================== 登录相关方法 ====================

// Login 用户登录
func (as *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*models.User, string, error) {
	// 1. 检查IP是否被封禁
	if as.isIPBlocked(clientIP) {
		as.loginFailureQueue <- &LoginFailure{
			Email:     req.Email,
			IP:        clientIP,
			Timestamp: time.Now(),
			UserAgent: userAgent,
		}
		return nil, "", errors.New("your IP has been blocked due to too many failed login attempts. Please try again later")
	}

	// 2. 检查登录频率限制（基于IP和邮箱）
	if config.RedisClient != nil {
		loginLimitKey := fmt.Sprintf("login:limit:%s:%s", req.Email, clientIP)
		attempts, _ := config.RedisClient.Get(redisCtx, loginLimitKey).Int64()

		if attempts >= int64(as.authConfig.MaxLoginAttempts) {
			as.blockIP(clientIP, "too many failed login attempts")
			return nil, "", fmt.Errorf("too many login attempts. Your IP has been blocked for %v", as.authConfig.LoginBlockDuration)
		}
	}

	// 3. 查找用户
	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		as.recordLoginFailure(req.Email, clientIP, userAgent, "user not found")
		return nil, "", errors.New("invalid email or password")
	}

	// 4. 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		as.recordLoginFailure(req.Email, clientIP, userAgent, "invalid password")
		return nil, "", errors.New("invalid email or password")
	}

	// 5. 检查用户状态
	if user.Status == 0 {
		return nil, "", errors.New("account is disabled. Please contact support")
	}

	// 6. 更新最后登录时间和登录次数
	now := time.Now()
	updates := map[string]interface{}{
		"last_login":  &now,
		"login_count": user.LoginCount + 1,
	}

	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		// 不影响登录流程
	}

	// 7. 清除登录失败记录
	if config.RedisClient != nil {
		loginLimitKey := fmt.Sprintf("login:limit:%s:%s", req.Email, clientIP)
		config.RedisClient.Del(redisCtx, loginLimitKey)
		as.ipBlockCache.Delete(clientIP)
	}

	// 8. 生成JWT token
	token, err := as.jwtService.GenerateToken(user.ID, user.Username, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	// 9. 异步记录登录日志
	go func() {
		as.recordLoginLog(&user, clientIP, userAgent, true)
	}()

	// 10. 记录活跃用户到Redis（在线统计）
	go func() {
		if config.RedisClient != nil {
			config.RedisClient.ZAdd(redisCtx, "users:active", redis.Z{
				Score:  float64(time.Now().Unix()),
				Member: user.ID,
			})
			config.RedisClient.Expire(redisCtx, "users:active", 7*24*time.Hour)
		}
	}()

	return &user, token, nil
}

// ==================== Token相关方法 ====================

// RefreshToken 刷新token
func (as *AuthService) RefreshToken(tokenString string) (string, map[string]interface{}, error) {
	// 1. 检查token是否在黑名单中
	if config.RedisClient != nil {
		blacklistKey := fmt.Sprintf("token:blacklist:%s", tokenString)
		exists, _ := config.RedisClient.Exists(redisCtx, blacklistKey).Result()
		if exists > 0 {
			return "", nil, errors.New("token has been revoked")
		}
	}

	// 2. 验证token
	claims, err := as.jwtService.ValidateToken(tokenString)
	if err != nil {
		return "", nil, err
	}

	// 3. 将旧token加入黑名单
	if config.RedisClient != nil {
		blacklistKey := fmt.Sprintf("token:blacklist:%s", tokenString)
		expiration := time.Until(claims.ExpiresAt.Time)
		if expiration > 0 {
			config.RedisClient.Set(redisCtx, blacklistKey, "1", expiration)
		}
	}

	// 4. 生成新token
	newToken, err := as.jwtService.GenerateToken(
		claims.UserID,
		claims.Username,
		claims.Email,
		claims.Role,
	)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate new token: %w", err)
	}

	userInfo := map[string]interface{}{
		"user_id":  claims.UserID,
		"username": claims.Username,
		"email":    claims.Email,
		"role":     claims.Role,
	}

	return newToken, userInfo, nil
}

// Logout 用户登出
func (as *AuthService) Logout(tokenString, userID string) error {
	// 1. 将token加入黑名单
	if config.RedisClient != nil {
		blacklistKey := fmt.Sprintf("token:blacklist:%s", tokenString)

		claims, err := as.jwtService.ValidateToken(tokenString)
		if err != nil {
			return err
		}

		expiration := time.Until(claims.ExpiresAt.Time)
		if expiration > 0 {
			config.RedisClient.Set(redisCtx, blacklistKey, "1", expiration)
		}
	}

	// 2. 从在线用户列表移除
	go func() {
		if config.RedisClient != nil {
			config.RedisClient.ZRem(redisCtx, "users:active", userID)
		}
	}()

	return nil
}

// ==================== 密码相关方法 ====================

// ChangePassword 修改密码（已登录用户）
func (as *AuthService) ChangePassword(userID, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		return errors.New("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return errors.New("current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := config.DB.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// 异步发送密码修改通知
	go func() {
		as.queueEmail(&EmailTask{
			Type:      "password_changed",
			ToEmail:   user.Email,
			Subject:   "Your Password Has Been Changed",
			Body:      fmt.Sprintf("Hello %s,\n\nYour password has been successfully changed. If you did not make this change, please contact support immediately.\n\nBest regards,\nRideHub Team", user.Username),
			Timestamp: time.Now(),
		})
	}()

	return nil
}

// SendPasswordResetToken 发送密码重置令牌
func (as *AuthService) SendPasswordResetToken(email string) error {
	// 1. 检查用户是否存在
	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		// 为了安全，即使用户不存在也返回成功
		return nil
	}

	// 2. 检查发送频率
	if config.RedisClient != nil {
		rateLimitKey := fmt.Sprintf("reset:rate_limit:%s", email)
		count, _ := config.RedisClient.Get(redisCtx, rateLimitKey).Int64()
		if count > 0 {
			return errors.New("please wait before requesting another password reset")
		}
	}

	// 3. 生成重置令牌，value存邮箱（30分钟有效）
	resetToken := generateRandomToken(32)
	if config.RedisClient != nil {
		resetKey := fmt.Sprintf("reset:password:%s", resetToken)
		config.RedisClient.Set(redisCtx, resetKey, email, 30*time.Minute)

		rateLimitKey := fmt.Sprintf("reset:rate_limit:%s", email)
		config.RedisClient.Set(redisCtx, rateLimitKey, "1", 5*time.Minute)
	}

	// 4. 异步发送邮件
	go func() {
		resetLink := fmt.Sprintf("http://localhost:5173/resetpassword/%s", resetToken)
		as.queueEmail(&EmailTask{
			Type:    "password_reset",
			ToEmail: email,
			Subject: "Reset Your Password",
			HTMLBody: fmt.Sprintf(`
				<h2>Password Reset Request</h2>
				<p>Hello,</p>
				<p>We received a request to reset your password.</p>
				<p>Click the link below to reset your password:</p>
				<p><a href="%s">Reset Password</a></p>
				<p>This link will expire in 30 minutes.</p>
				<p>If you did not request a password reset, please ignore this email.</p>
			`, resetLink),
			Timestamp: time.Now(),
		})
	}()

	return nil
}

// ResetPassword 通过重置令牌设置新密码
func (as *AuthService) ResetPassword(token, newPassword string) error {
	if config.RedisClient == nil {
		return errors.New("password reset is temporarily unavailable")
	}

	// 1. 验证重置令牌
	resetKey := fmt.Sprintf("reset:password:%s", token)
	email, err := config.RedisClient.Get(redisCtx, resetKey).Result()
	if err == redis.Nil {
		return errors.New("reset token has expired or is invalid")
	}
	if err != nil {
		return fmt.Errorf("failed to verify reset token: %w", err)
	}

	// 2. 验证密码强度
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	// 3. 查找用户
	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return errors.New("user not found")
	}

	// 4. 加密新密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// 5. 更新密码
	if err := config.DB.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// 6. 删除重置令牌
	config.RedisClient.Del(redisCtx, resetKey)

	// 7. 异步发送密码修改通知邮件
	go func() {
		as.queueEmail(&EmailTask{
			Type:      "password_changed",
			ToEmail:   email,
			Subject:   "Your Password Has Been Changed",
			Body:      fmt.Sprintf("Hello %s,\n\nYour password has been successfully changed. If you did not make this change, please contact support immediately.\n\nBest regards,\nRideHub Team", user.Username),
			Timestamp: time.Now(),
		})
	}()

	return nil
}

// ==================== IP封禁相关方法 ====================

// isIPBlocked 检查IP是否被封禁
func (as *AuthService) isIPBlocked(ip string) bool {
	// 1. 检查内存缓存
	if info, exists := as.ipBlockCache.Load(ip); exists {
		blockInfo := info.(*BlockInfo)
		if time.Now().Before(blockInfo.UnblockTime) {
			return true
		}
		// 已过期，删除缓存
		as.ipBlockCache.Delete(ip)
	}

	// 2. 检查Redis
	if config.RedisClient != nil {
		blockKey := fmt.Sprintf("ip:blocked:%s", ip)
		exists, _ := config.RedisClient.Exists(redisCtx, blockKey).Result()
		if exists > 0 {
			return true
		}
	}

	return false
}

// blockIP 封禁IP
func (as *AuthService) blockIP(ip, reason string) {
	unblockTime := time.Now().Add(as.authConfig.LoginBlockDuration)

	// 1. 内存缓存（快速检查）
	as.ipBlockCache.Store(ip, &BlockInfo{
		UnblockTime: unblockTime,
		Reason:      reason,
	})

	// 2. Redis（持久化）
	if config.RedisClient != nil {
		blockKey := fmt.Sprintf("ip:blocked:%s", ip)
		blockData := map[string]interface{}{
			"blocked_at": time.Now().Unix(),
			"unblock_at": unblockTime.Unix(),
			"reason":     reason,
		}
		config.RedisClient.HMSet(redisCtx, blockKey, blockData)
		config.RedisClient.Expire(redisCtx, blockKey, as.authConfig.LoginBlockDuration)

		config.RedisClient.XAdd(redisCtx, &redis.XAddArgs{
			Stream: "security_events",
			Values: map[string]interface{}{
				"event":      "ip_blocked",
				"ip":         ip,
				"reason":     reason,
				"unblock_at": unblockTime.Unix(),
				"timestamp":  time.Now().Unix(),
			},
		})
	}
}

// recordSuspiciousActivity 记录可疑行为
func (as *AuthService) recordSuspiciousActivity(ip, reason string) {
	if config.RedisClient == nil {
		return
	}
	suspiciousKey := fmt.Sprintf("suspicious:%s", ip)
	count, _ := config.RedisClient.Incr(redisCtx, suspiciousKey).Result()
	config.RedisClient.Expire(redisCtx, suspiciousKey, time.Hour)

	// 可疑行为次数超过阈值，自动封禁
	if count >= 3 {
		as.blockIP(ip, "suspicious activity detected: "+reason)
	}
}

// cleanupIPBlocks 定期清理过期的IP封禁
func (as *AuthService) cleanupIPBlocks() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		as.ipBlockCache.Range(func(key, value interface{}) bool {
			blockInfo := value.(*BlockInfo)
			if time.Now().After(blockInfo.UnblockTime) {
				as.ipBlockCache.Delete(key)
			}
			return true
		})
	}
}

// ==================== 邮件发送相关方法 ====================

// startEmailWorkers 启动邮件发送worker池
func (as *AuthService) startEmailWorkers() {
	for i := 0; i < as.emailWorkers; i++ {
		go as.emailWorker(i)
	}
}

// emailWorker 邮件发送worker
func (as *AuthService) emailWorker(workerID int) {
	for task := range as.emailQueue {
		err := as.sendEmail(task)
		if err != nil {
			// 重试逻辑
			task.Retries++
			if task.Retries < 3 {
				time.Sleep(time.Second * time.Duration(task.Retries))
				as.emailQueue <- task
			} else {
				as.logEmailFailure(task, err)
			}
		}
	}
}

// queueEmail 将邮件任务加入队列
func (as *AuthService) queueEmail(task *EmailTask) {
	select {
	case as.emailQueue <- task:
	default:
		// 队列满，丢弃不阻塞
	}
}

// sendEmail 发送邮件（实际实现）
func (as *AuthService) sendEmail(task *EmailTask) error {
	// 未配置SMTP时直接返回成功（开发环境）
	if as.emailConfig.SMTPHost == "" || as.emailConfig.SMTPUser == "" {
		return nil
	}

	from := mail.Address{Name: as.emailConfig.FromName, Address: as.emailConfig.FromEmail}
	to := mail.Address{Name: "", Address: task.ToEmail}

	headers := map[string]string{
		"From":         from.String(),
		"To":           to.String(),
		"Subject":      task.Subject,
		"Content-Type": "text/html; charset=UTF-8",
	}

	message := ""
	for k, v := range headers {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n"

	if task.HTMLBody != "" {
		message += task.HTMLBody
	} else {
		message += task.Body
	}

	smtpServer := fmt.Sprintf("%s:%d", as.emailConfig.SMTPHost, as.emailConfig.SMTPPort)
	smtpAuth := smtp.PlainAuth("", as.emailConfig.SMTPUser, as.emailConfig.SMTPPassword, as.emailConfig.SMTPHost)

	err := smtp.SendMail(smtpServer, smtpAuth, as.emailConfig.FromEmail, []string{task.ToEmail}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// logEmailFailure 记录邮件发送失败
func (as *AuthService) logEmailFailure(task *EmailTask, err error) {
	if config.RedisClient != nil {
		config.RedisClient.XAdd(redisCtx, &redis.XAddArgs{
			Stream: "email_failures",
			Values: map[string]interface{}{
				"type":      task.Type,
				"to":        task.ToEmail,
				"error":     err.Error(),
				"timestamp": time.Now().Unix(),
			},
		})
	}
}

// ==================== 登录失败处理方法 ====================

// startLoginFailureWorker 启动登录失败处理worker
func (as *AuthService) startLoginFailureWorker() {
	go func() {
		for failure := range as.loginFailureQueue {
			as.processLoginFailure(failure)
		}
	}()
}

// processLoginFailure 处理登录失败
func (as *AuthService) processLoginFailure(failure *LoginFailure) {
	if config.RedisClient == nil {
		return
	}

	// 1. 记录到Redis Stream
	config.RedisClient.XAdd(redisCtx, &redis.XAddArgs{
		Stream: "login_failures",
		Values: map[string]interface{}{
			"email":      failure.Email,
			"ip":         failure.IP,
			"user_agent": failure.UserAgent,
			"timestamp":  failure.Timestamp.Unix(),
		},
	})

	// 2. 检查该IP短时间内的失败次数
	ipFailureKey := fmt.Sprintf("login:failures:ip:%s", failure.IP)
	count, _ := config.RedisClient.Incr(redisCtx, ipFailureKey).Result()
	config.RedisClient.Expire(redisCtx, ipFailureKey, time.Hour)

	// 失败次数超过阈值，封禁IP
	if count >= 10 {
		as.blockIP(failure.IP, "multiple login failures")
	}

	// 3. 记录告警标记
	alertKey := fmt.Sprintf("alert:login_failure:%s", failure.IP)
	config.RedisClient.Set(redisCtx, alertKey, failure.Timestamp.Unix(), time.Hour)
}

// recordLoginFailure 记录登录失败
func (as *AuthService) recordLoginFailure(email, ip, userAgent, reason string) {
	failure := &LoginFailure{
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Timestamp: time.Now(),
	}

	select {
	case as.loginFailureQueue <- failure:
	default:
	}

	// 增加失败计数
	if config.RedisClient != nil {
		loginLimitKey := fmt.Sprintf("login:limit:%s:%s", email, ip)
		config.RedisClient.Incr(redisCtx, loginLimitKey)
		config.RedisClient.Expire(redisCtx, loginLimitKey, as.authConfig.LoginBlockDuration)
	}
}

// recordLoginLog 记录登录日志
func (as *AuthService) recordLoginLog(user *models.User, ip, userAgent string, success bool) {
	if config.RedisClient != nil {
		config.RedisClient.XAdd(redisCtx, &redis.XAddArgs{
			Stream: "login_logs",
			Values: map[string]interface{}{
				"user_id":    user.ID,
				"username":   user.Username,
				"email":      user.Email,
				"ip":         ip,
				"user_agent": userAgent,
				"success":    success,
				"timestamp":  time.Now().Unix(),
			},
		})
	}
}

// ==================== 工具方法 ====================

// generateRandomToken 生成随机令牌
func generateRandomToken(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return hex.EncodeToString(b)
}
