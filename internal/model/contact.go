package model

import "time"

// Subject は問い合わせの件名マスタを表す。
type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Contact は問い合わせメッセージを表す。
type Contact struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   Subject   `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
