package models

// 需要AutoMigrate的資料表
func All() []interface{} {
	return []interface{}{
		&User{},
		&LoginToken{},
		&Category{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
	}
}
