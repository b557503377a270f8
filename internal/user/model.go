package user

type User struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	FirstName string `json:"firstName" gorm:"not null"`
	LastName  string `json:"lastName" gorm:"not null"`
	Email     string `json:"email" gorm:"not null"`
	IsManager bool   `json:"isManager" gorm:"not null"`
}

func (User) TableName() string {
	return "users"
}
