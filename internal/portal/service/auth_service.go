package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/theDevJade/Robodores-Shop-Website/internal/config"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
)

const refreshKeyPrefix = "token:refresh:"

// AuthService handles registration, login and account administration.
type AuthService struct {
	users      *repository.UserRepository
	attendance *repository.AttendanceRepository
	jobs       *repository.JobRepository
	orders     *repository.OrderRepository
	inventory  *repository.InventoryRepository
	tickets    *repository.TicketRepository
	rdb        *redis.Client
	cfg        *config.Config
}

func NewAuthService(
	users *repository.UserRepository,
	attendance *repository.AttendanceRepository,
	jobs *repository.JobRepository,
	orders *repository.OrderRepository,
	inventory *repository.InventoryRepository,
	tickets *repository.TicketRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:      users,
		attendance: attendance,
		jobs:       jobs,
		orders:     orders,
		inventory:  inventory,
		tickets:    tickets,
		rdb:        rdb,
		cfg:        cfg,
	}
}

// TokenPair is the login/refresh response.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// RegisterInput creates a full account directly.
type RegisterInput struct {
	Email     string  `json:"email"`
	FullName  string  `json:"full_name"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	BarcodeID *string `json:"barcode_id"`
	StudentID *string `json:"student_id"`
}

// AccountRequestInput is a self-service signup held for admin review.
type AccountRequestInput struct {
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Password      string `json:"password"`
	RequestedRole string `json:"requested_role"`
}

// SelfUpdateInput edits the caller's own profile.
type SelfUpdateInput struct {
	FullName  *string `json:"full_name"`
	BarcodeID *string `json:"barcode_id"`
	StudentID *string `json:"student_id"`
	Password  *string `json:"password"`
}

// AdminUserUpdateInput edits any account; admin only.
type AdminUserUpdateInput struct {
	FullName  *string `json:"full_name"`
	Role      *string `json:"role"`
	BarcodeID *string `json:"barcode_id"`
	StudentID *string `json:"student_id"`
	Password  *string `json:"password"`
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func verifyPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// Register creates an account. The first registration bootstraps the
// instance without auth; afterwards only admins may register directly.
func (s *AuthService) Register(ctx context.Context, actorID uint, input *RegisterInput) (*entity.User, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total > 0 {
		if actorID == 0 {
			return nil, NewPermissionError("Admin approval required")
		}
		actor, err := s.users.FindByID(ctx, actorID)
		if err != nil || actor.Role != entity.RoleAdmin {
			return nil, NewPermissionError("Admin approval required")
		}
	}
	return s.createUser(ctx, input)
}

// CreateUser registers an account on behalf of an admin.
func (s *AuthService) CreateUser(ctx context.Context, input *RegisterInput) (*entity.User, error) {
	return s.createUser(ctx, input)
}

func (s *AuthService) createUser(ctx context.Context, input *RegisterInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, NewValidationError("Email is required")
	}
	if input.Password == "" {
		return nil, NewValidationError("Password is required")
	}
	role := input.Role
	if role == "" {
		role = entity.RoleStudent
	}
	if !entity.ValidRole(role) {
		return nil, NewValidationError("Invalid role")
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, NewConflictError("Email already registered")
	} else if err != repository.ErrNotFound {
		return nil, err
	}
	if input.BarcodeID != nil && *input.BarcodeID != "" {
		if _, err := s.users.FindByBarcode(ctx, *input.BarcodeID); err == nil {
			return nil, NewConflictError("Barcode already registered")
		} else if err != repository.ErrNotFound {
			return nil, err
		}
	}
	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Email:          email,
		FullName:       input.FullName,
		Role:           role,
		HashedPassword: hashed,
		BarcodeID:      input.BarcodeID,
		StudentID:      input.StudentID,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestAccount queues a signup for admin review.
func (s *AuthService) RequestAccount(ctx context.Context, input *AccountRequestInput) (*entity.PendingUser, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, NewValidationError("Email and password are required")
	}
	requestedRole := input.RequestedRole
	if requestedRole == "" {
		requestedRole = entity.RoleStudent
	}
	if !entity.ValidRole(requestedRole) {
		return nil, NewValidationError("Invalid role")
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, NewConflictError("Email already exists")
	} else if err != repository.ErrNotFound {
		return nil, err
	}
	if _, err := s.users.FindPendingByEmail(ctx, email); err == nil {
		return nil, NewConflictError("A request for this email already exists")
	} else if err != repository.ErrNotFound {
		return nil, err
	}
	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	pending := &entity.PendingUser{
		Email:         email,
		FullName:      input.FullName,
		PasswordHash:  hashed,
		RequestedRole: requestedRole,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.users.CreatePending(ctx, pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// ListRequests returns pending signups, oldest first.
func (s *AuthService) ListRequests(ctx context.Context) ([]entity.PendingUser, error) {
	return s.users.FindAllPending(ctx)
}

// ApproveRequest converts a pending signup into an account with the role
// the admin grants.
func (s *AuthService) ApproveRequest(ctx context.Context, requestID uint, role string) (*entity.User, error) {
	pending, err := s.users.FindPendingByID(ctx, requestID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewNotFoundError("Request not found")
		}
		return nil, err
	}
	if !entity.ValidRole(role) {
		return nil, NewValidationError("Invalid role")
	}
	if _, err := s.users.FindByEmail(ctx, pending.Email); err == nil {
		_ = s.users.DeletePending(ctx, pending.ID)
		return nil, NewConflictError("Email already registered")
	} else if err != repository.ErrNotFound {
		return nil, err
	}
	user := &entity.User{
		Email:          pending.Email,
		FullName:       pending.FullName,
		Role:           role,
		HashedPassword: pending.PasswordHash,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.users.DeletePending(ctx, pending.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// RejectRequest discards a pending signup.
func (s *AuthService) RejectRequest(ctx context.Context, requestID uint) error {
	if _, err := s.users.FindPendingByID(ctx, requestID); err != nil {
		if err == repository.ErrNotFound {
			return NewNotFoundError("Request not found")
		}
		return err
	}
	return s.users.DeletePending(ctx, requestID)
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, *TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, nil, NewPermissionError("Incorrect email or password")
		}
		return nil, nil, err
	}
	if !verifyPassword(user.HashedPassword, password) {
		return nil, nil, NewPermissionError("Incorrect email or password")
	}
	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates a refresh token. The presented token's jti must still
// exist in Redis; rotation revokes it so a stolen token works at most once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, NewPermissionError("Invalid refresh token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, NewPermissionError("Invalid refresh token")
	}
	if tokenType, _ := claims["type"].(string); tokenType != "refresh" {
		return nil, NewPermissionError("Invalid token type")
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, NewPermissionError("Invalid token subject")
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, NewPermissionError("Invalid refresh token")
	}
	if s.rdb != nil {
		stored, err := s.rdb.Get(ctx, refreshKeyPrefix+jti).Result()
		if err != nil || stored != subject {
			return nil, NewPermissionError("Refresh token revoked")
		}
		s.rdb.Del(ctx, refreshKeyPrefix+jti)
	}
	userID, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return nil, NewPermissionError("Invalid token subject")
	}
	user, err := s.users.FindByID(ctx, uint(userID))
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewNotFoundError("User not found")
		}
		return nil, err
	}
	return s.generateTokenPair(ctx, user)
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *entity.User) (*TokenPair, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(user.ID), 10),
		"uid":   user.ID,
		"name":  user.FullName,
		"email": user.Email,
		"role":  user.Role,
		"iss":   s.cfg.JWT.Issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWT.AccessTokenExpire).Unix(),
		"jti":   uuid.New().String(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshJTI := uuid.New().String()
	refreshClaims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"type": "refresh",
		"iss":  s.cfg.JWT.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWT.RefreshTokenExpire).Unix(),
		"jti":  refreshJTI,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if s.rdb != nil {
		s.rdb.Set(ctx, refreshKeyPrefix+refreshJTI,
			strconv.FormatUint(uint64(user.ID), 10), s.cfg.JWT.RefreshTokenExpire)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenExpire.Seconds()),
		TokenType:    "bearer",
	}, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, actorID uint) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewNotFoundError("User not found")
		}
		return nil, err
	}
	return user, nil
}

// UpdateMe edits the caller's own profile.
func (s *AuthService) UpdateMe(ctx context.Context, actorID uint, input *SelfUpdateInput) (*entity.User, error) {
	user, err := s.Me(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.BarcodeID != nil {
		user.BarcodeID = input.BarcodeID
	}
	if input.StudentID != nil {
		user.StudentID = input.StudentID
	}
	if input.Password != nil && *input.Password != "" {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns all accounts for admins, optionally filtered.
func (s *AuthService) ListUsers(ctx context.Context, search string) ([]entity.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if search == "" {
		return users, nil
	}
	term := strings.ToLower(search)
	matched := make([]entity.User, 0, len(users))
	for _, user := range users {
		if strings.Contains(strings.ToLower(user.FullName), term) ||
			strings.Contains(strings.ToLower(user.Email), term) ||
			strings.Contains(strings.ToLower(user.Role), term) ||
			(user.BarcodeID != nil && strings.Contains(strings.ToLower(*user.BarcodeID), term)) ||
			(user.StudentID != nil && strings.Contains(strings.ToLower(*user.StudentID), term)) {
			matched = append(matched, user)
		}
	}
	return matched, nil
}

// UpdateUser edits any account; admin only.
func (s *AuthService) UpdateUser(ctx context.Context, userID uint, input *AdminUserUpdateInput) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewNotFoundError("User not found")
		}
		return nil, err
	}
	if input.FullName != nil && *input.FullName != "" {
		user.FullName = *input.FullName
	}
	if input.Role != nil && *input.Role != "" {
		if !entity.ValidRole(*input.Role) {
			return nil, NewValidationError("Invalid role")
		}
		user.Role = *input.Role
	}
	if input.BarcodeID != nil {
		user.BarcodeID = input.BarcodeID
	}
	if input.StudentID != nil {
		user.StudentID = input.StudentID
	}
	if input.Password != nil && *input.Password != "" {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account after detaching its references so history
// rows survive with names or raw identifiers intact.
func (s *AuthService) DeleteUser(ctx context.Context, adminID, userID uint) error {
	if adminID == userID {
		return NewValidationError("You cannot delete your own account")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return NewNotFoundError("User not found")
		}
		return err
	}
	if err := s.attendance.UnlinkUser(ctx, user); err != nil {
		return err
	}
	if err := s.jobs.ClearUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.orders.ClearUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.inventory.ClearUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.tickets.ClearUser(ctx, user.ID); err != nil {
		return err
	}
	return s.users.Delete(ctx, user.ID)
}
