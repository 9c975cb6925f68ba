package models

import "gorm.io/gorm"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// 是否為管理員，角色只由Role欄位決定
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type User struct {
	gorm.Model
	Username string `gorm:"size:150;uniqueIndex;not null"`
	Email    string `gorm:"size:254;uniqueIndex;not null"`
	Password string `gorm:"not null" json:"-"`
	Name     string
	Phone    string `gorm:"size:15"`
	Address  string `gorm:"type:text"`
	Role     Role   `gorm:"type:varchar(10);not null"`
}
