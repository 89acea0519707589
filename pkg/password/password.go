package password

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinLength 最短密码长度
const MinLength = 8

// ErrTooShort 密码过短
var ErrTooShort = fmt.Errorf("password must be at least %d characters", MinLength)

// ErrTooLong bcrypt 只处理前72字节
var ErrTooLong = errors.New("password must be at most 72 bytes")

// Validate 校验密码强度
func Validate(plain string) error {
	if utf8.RuneCountInString(plain) < MinLength {
		return ErrTooShort
	}
	if len(plain) > 72 {
		return ErrTooLong
	}
	return nil
}

// Hash 生成密码哈希
func Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

// Verify 校验密码
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
