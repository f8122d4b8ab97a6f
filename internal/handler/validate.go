package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate はDTOのフィールドバリデーションに使う共有インスタンス。
// エラーメッセージのフィールド名にはjsonタグ名を使う。
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationFields はバリデーションエラーをフィールド名→メッセージの対応に変換する。
func validationFields(err error) map[string]string {
	fields := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["_"] = "入力内容に誤りがあります。"
		return fields
	}

	for _, fe := range verrs {
		fields[fe.Field()] = fieldErrorMessage(fe)
	}
	return fields
}

// fieldErrorMessage はバリデーションタグごとの日本語メッセージを返す。
func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必須項目です。"
	case "email":
		return "メールアドレスの形式が正しくありません。"
	case "min":
		return fmt.Sprintf("%s文字以上で入力してください。", fe.Param())
	case "max":
		return fmt.Sprintf("%s文字以下で入力してください。", fe.Param())
	case "gt":
		return fmt.Sprintf("%sより大きい値を入力してください。", fe.Param())
	default:
		return "入力内容に誤りがあります。"
	}
}
