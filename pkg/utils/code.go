package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateVerificationCode возвращает случайный 6-значный цифровой код.
func GenerateVerificationCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand недоступен только при деградации ОС
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}
