package model

import "time"

// Product は販売商品を表す。
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	ImageFileName string    `json:"imageFileName"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Categories は商品カテゴリの固定リスト。
// この一覧に含まれないカテゴリでの登録・更新は拒否する。
var Categories = []string{
	"Phones", "Computers", "Accessories", "Printers", "Cameras", "Other",
}

// IsValidCategory は指定カテゴリが固定リストに含まれるかを返す。
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
