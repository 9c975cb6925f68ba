package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront/jwt"
	"storefront/models"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.@+-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
)

// 檢查使用者名稱是否合法
func ValidateUsername(username string) bool {
	if len(username) < 3 || len(username) > 150 {
		return false
	}
	return usernamePattern.MatchString(username)
}

// 檢查信箱是否合法
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// 檢查密碼是否合法：8~50字元，需包含英文與數字，不可有空白
func ValidatePassword(password string) bool {
	if len(password) < 8 || len(password) > 50 {
		return false
	}

	var (
		isLetter = false
		isNumber = false
	)
	for _, s := range password {
		switch {
		case unicode.IsSpace(s):
			return false
		case unicode.IsLetter(s):
			isLetter = true
		case unicode.IsDigit(s):
			isNumber = true
		}
	}
	return isLetter && isNumber
}

type AccountService struct {
	db     *gorm.DB
	tokens *jwt.Manager
	now    func() time.Time
}

func NewAccountService(db *gorm.DB, tokens *jwt.Manager, now func() time.Time) *AccountService {
	if now == nil {
		now = time.Now
	}
	return &AccountService{db: db, tokens: tokens, now: now}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Phone    string
	Address  string
}

func (s *AccountService) exists(db *gorm.DB, column, value string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).Where(column+" = ?", value).Count(&count).Error
	return count > 0, err
}

// 註冊一般使用者帳戶，角色固定為CUSTOMER
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	return s.createUser(ctx, input, models.RoleCustomer)
}

func (s *AccountService) createUser(ctx context.Context, input RegisterInput, role models.Role) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if !ValidateUsername(input.Username) {
		return nil, validationError("invalid username")
	}
	if !ValidateEmail(input.Email) {
		return nil, validationError("invalid email")
	}
	if !ValidatePassword(input.Password) {
		return nil, validationError("password must be 8-50 characters with letters and digits")
	}
	if len(input.Phone) > 15 {
		return nil, validationError("phone number is too long")
	}

	db := s.db.WithContext(ctx)

	//檢查使用者名稱與信箱是否重複
	taken, err := s.exists(db, "username", input.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflictError("username %q is already taken", input.Username)
	}
	taken, err = s.exists(db, "email", input.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflictError("email %q is already registered", input.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashedPassword),
		Name:     input.Name,
		Phone:    input.Phone,
		Address:  input.Address,
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, conflictError("username or email is already registered")
		}
		return nil, err
	}
	return &user, nil
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// 登入成功後產生JWT並儲存LoginToken
func (s *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrUnauthenticated
	}

	token, expTime, err := s.tokens.GenerateToken(user.ID, user.Role, s.now())
	if err != nil {
		return nil, err
	}

	loginToken := models.LoginToken{
		Token:          token,
		ExpirationTime: expTime,
		UserID:         user.ID,
		Role:           user.Role,
	}
	if err := db.Create(&loginToken).Error; err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: expTime, User: &user}, nil
}

// 驗證Token並確認未登出
func (s *AccountService) Authenticate(ctx context.Context, token string) (Actor, error) {
	userID, role, err := s.tokens.VerifyToken(token)
	if err != nil {
		return Actor{}, err
	}

	var loginToken models.LoginToken
	err = s.db.WithContext(ctx).
		Where("token = ? AND user_id = ? AND expiration_time > ?", token, userID, s.now()).
		First(&loginToken).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Actor{}, ErrUnauthenticated
		}
		return Actor{}, err
	}

	return Actor{UserID: userID, Role: role}, nil
}

func (s *AccountService) Logout(ctx context.Context, token string) error {
	result := s.db.WithContext(ctx).Unscoped().Where("token = ?", token).Delete(&models.LoginToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("login token")
	}
	return nil
}

func (s *AccountService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, wrapLookup(err, "user")
	}
	return &user, nil
}

type ProfilePatch struct {
	Email       string
	OldPassword string
	NewPassword string
	Name        *string
	Phone       *string
	Address     *string
}

// 變更使用者資料，需驗證舊密碼，角色不可由本人變更
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, patch ProfilePatch) (*models.User, error) {
	db := s.db.WithContext(ctx)

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(patch.OldPassword)); err != nil {
		return nil, validationError("old password is incorrect")
	}

	updates := map[string]interface{}{}
	if patch.NewPassword != "" {
		if !ValidatePassword(patch.NewPassword) {
			return nil, validationError("invalid new password")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(patch.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password"] = string(hashedPassword)
	}
	if patch.Email != "" {
		email := strings.TrimSpace(strings.ToLower(patch.Email))
		if !ValidateEmail(email) {
			return nil, validationError("invalid email")
		}
		if email != user.Email {
			taken, err := s.exists(db, "email", email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, conflictError("email %q is already registered", email)
			}
		}
		updates["email"] = email
	}

	//如果使用者有提供資料則覆蓋(包含空字串)
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Phone != nil {
		if len(*patch.Phone) > 15 {
			return nil, validationError("phone number is too long")
		}
		updates["phone"] = *patch.Phone
	}
	if patch.Address != nil {
		updates["address"] = *patch.Address
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, conflictError("email is already registered")
		}
		return nil, err
	}
	return s.Profile(ctx, userID)
}

func (s *AccountService) ListUsers(ctx context.Context, actor Actor, page Page) ([]models.User, int64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	page = page.normalize(adminOrderPageSize)
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := page.apply(db).Order("id").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// 變更使用者角色，並刪除該使用者的LoginToken使新角色於重新登入後生效
func (s *AccountService) SetRole(ctx context.Context, actor Actor, userID uint, role models.Role) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, validationError("unknown role %q", role)
	}
	if userID == actor.UserID && role != models.RoleAdmin {
		return nil, validationError("admins cannot revoke their own role")
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return wrapLookup(err, "user")
		}
		if user.Role == role {
			return nil
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("role", role).Error; err != nil {
			return err
		}
		user.Role = role
		return tx.Unscoped().Where("user_id = ?", userID).Delete(&models.LoginToken{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// 建立管理員帳號，已存在的使用者則提升為管理員，供命令列使用
func (s *AccountService) EnsureAdmin(ctx context.Context, input RegisterInput) (*models.User, bool, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("username = ?", strings.TrimSpace(input.Username)).First(&user).Error
	if err == nil {
		if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("role", models.RoleAdmin).Error; err != nil {
			return nil, false, err
		}
		user.Role = models.RoleAdmin
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created, err := s.createUser(ctx, input, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}
