package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg}
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	UserID       uint        `json:"userId"`
	Role         models.Role `json:"role"`
	Name         string      `json:"name"`
}

// Login handles user login. The email is tried against the admin, doctor and
// patient tables in that order; each role keeps its own table and id space.
// Inactive and blacklisted accounts cannot authenticate.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var (
		userID     uint
		role       models.Role
		name       string
		credential *models.Credential
	)

	var admin models.Admin
	if err := h.DB.Where("email = ?", req.Email).First(&admin).Error; err == nil {
		userID, role, name, credential = admin.ID, models.RoleAdmin, admin.Username, &admin.Credential
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	if credential == nil {
		var doctor models.Doctor
		if err := h.DB.Where("email = ?", req.Email).First(&doctor).Error; err == nil {
			if !doctor.IsActive() {
				utils.Forbidden(c, "This account is not active.")
				return
			}
			userID, role, name, credential = doctor.ID, models.RoleDoctor, doctor.Name, &doctor.Credential
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
	}

	if credential == nil {
		var patient models.Patient
		if err := h.DB.Where("email = ?", req.Email).First(&patient).Error; err == nil {
			if !patient.IsActive() {
				utils.Forbidden(c, "This account is not active.")
				return
			}
			userID, role, name, credential = patient.ID, models.RolePatient, patient.Name, &patient.Credential
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
	}

	if credential == nil || !credential.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	accessToken, refreshTokenString, err := utils.GenerateTokens(userID, role, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}

	refreshToken := models.RefreshToken{
		UserID:    userID,
		Role:      role,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		IsRevoked: false,
	}
	if err := h.DB.Create(&refreshToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to store refresh token: "+err.Error())
		return
	}

	utils.Success(c, "Logged in successfully", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		UserID:       userID,
		Role:         role,
		Name:         name,
	})
}

// RegisterRequest represents the request body for patient self-registration.
// Admins and doctors are created by an administrator, never here.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Age      *int   `json:"age" binding:"required,gt=0"`
	Gender   string `json:"gender" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register handles patient self-registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Patient
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.BadRequest(c, "A patient with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	patient := models.Patient{
		Name:    req.Name,
		Age:     req.Age,
		Gender:  req.Gender,
		Phone:   req.Phone,
		Address: req.Address,
		Status:  models.UserActive,
	}
	patient.Email = req.Email
	if err := patient.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.BadRequest(c, "A patient with this email already exists")
			return
		}
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	utils.Created(c, "Registration successful", patient)
}

// RefreshTokenRequest represents the request body for refreshing tokens.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken exchanges a valid refresh token for a new token pair. The old
// refresh token is revoked.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	claims, err := utils.ValidateToken(req.RefreshToken, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token: "+err.Error())
		return
	}

	var stored models.RefreshToken
	err = h.DB.Where("token = ? AND user_id = ? AND role = ?", req.RefreshToken, claims.UserID, claims.Role).
		First(&stored).Error
	if err != nil {
		utils.Unauthorized(c, "Refresh token not recognized")
		return
	}
	if stored.IsRevoked || time.Now().After(stored.ExpiresAt) {
		utils.Unauthorized(c, "Refresh token expired or revoked")
		return
	}

	accessToken, refreshTokenString, err := utils.GenerateTokens(claims.UserID, claims.Role, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&stored).Update("is_revoked", true).Error; err != nil {
			return err
		}
		return tx.Create(&models.RefreshToken{
			UserID:    claims.UserID,
			Role:      claims.Role,
			Token:     refreshTokenString,
			ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		}).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to rotate refresh token: "+err.Error())
		return
	}

	utils.Success(c, "Token refreshed", gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshTokenString,
	})
}

// Logout revokes all refresh tokens for the authenticated principal.
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.Unauthorized(c, "Not authenticated")
		return
	}

	err := h.DB.Model(&models.RefreshToken{}).
		Where("user_id = ? AND role = ?", principal.ID, principal.Role).
		Update("is_revoked", true).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to revoke tokens: "+err.Error())
		return
	}

	utils.Success(c, "Logged out successfully", nil)
}

// GetProfile returns the authenticated user's own record.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.Unauthorized(c, "Not authenticated")
		return
	}

	switch principal.Role {
	case models.RoleAdmin:
		var admin models.Admin
		if err := h.DB.First(&admin, principal.ID).Error; err != nil {
			utils.NotFound(c, "Admin not found")
			return
		}
		utils.Success(c, "Profile fetched", admin)
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := h.DB.Preload("Department").First(&doctor, principal.ID).Error; err != nil {
			utils.NotFound(c, "Doctor not found")
			return
		}
		utils.Success(c, "Profile fetched", doctor)
	case models.RolePatient:
		var patient models.Patient
		if err := h.DB.First(&patient, principal.ID).Error; err != nil {
			utils.NotFound(c, "Patient not found")
			return
		}
		utils.Success(c, "Profile fetched", patient)
	default:
		utils.Forbidden(c, "Unknown role")
	}
}

// UpdateProfileRequest represents the request body for profile updates.
type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	Gender  string `json:"gender"`
	Age     *int   `json:"age" binding:"omitempty,gt=0"`
	Address string `json:"address"`
	Bio     string `json:"bio"`
}

// UpdateProfile lets patients edit their contact details and doctors their
// phone and bio. Email changes are checked for uniqueness within the role's
// own table.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.Unauthorized(c, "Not authenticated")
		return
	}

	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	switch principal.Role {
	case models.RolePatient:
		var patient models.Patient
		if err := h.DB.First(&patient, principal.ID).Error; err != nil {
			utils.NotFound(c, "Patient not found")
			return
		}
		if req.Email != "" && req.Email != patient.Email {
			var existing models.Patient
			if err := h.DB.Where("email = ? AND id <> ?", req.Email, patient.ID).First(&existing).Error; err == nil {
				utils.BadRequest(c, "Another patient with that email already exists")
				return
			}
			patient.Email = req.Email
		}
		if req.Name != "" {
			patient.Name = req.Name
		}
		if req.Phone != "" {
			patient.Phone = req.Phone
		}
		if req.Gender != "" {
			patient.Gender = req.Gender
		}
		if req.Age != nil {
			patient.Age = req.Age
		}
		if req.Address != "" {
			patient.Address = req.Address
		}
		if err := h.DB.Save(&patient).Error; err != nil {
			utils.InternalServerError(c, "Failed to update profile: "+err.Error())
			return
		}
		utils.Success(c, "Profile updated", patient)
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := h.DB.First(&doctor, principal.ID).Error; err != nil {
			utils.NotFound(c, "Doctor not found")
			return
		}
		if req.Phone != "" {
			doctor.Phone = req.Phone
		}
		if req.Bio != "" {
			doctor.Bio = req.Bio
		}
		if err := h.DB.Save(&doctor).Error; err != nil {
			utils.InternalServerError(c, "Failed to update profile: "+err.Error())
			return
		}
		utils.Success(c, "Profile updated", doctor)
	default:
		utils.Forbidden(c, "Profile updates are available to patients and doctors")
	}
}
