package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks basic email shape. Deliverability is not verified
// here; a confirmation mail handles that.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("이메일을 입력해주세요")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("올바른 이메일 형식이 아닙니다")
	}
	return nil
}

// ValidatePassword enforces the minimum credential policy.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("비밀번호는 최소 6자 이상이어야 합니다")
	}
	if len(password) > 128 {
		return fmt.Errorf("비밀번호는 128자를 넘을 수 없습니다")
	}
	return nil
}

// ValidateNickname enforces display-name length in runes, not bytes.
func ValidateNickname(nickname string) error {
	n := utf8.RuneCountInString(nickname)
	if n < 2 {
		return fmt.Errorf("닉네임은 최소 2자 이상이어야 합니다")
	}
	if n > 20 {
		return fmt.Errorf("닉네임은 20자를 넘을 수 없습니다")
	}
	return nil
}
