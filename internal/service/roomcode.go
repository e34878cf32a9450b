package service

import (
	"context"
	"crypto/rand"
	"fmt"
)

// codeAlphabet omits visually confusable characters (0/O, 1/I). Codes are a
// share convenience, not a secret.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6

	codeAttempts = 10
)

// generateRoomCode draws codes until one is unused. The codespace is vast
// next to any realistic number of live rooms, so collisions only ever cost a
// transparent retry.
func generateRoomCode(ctx context.Context, inUse func(context.Context, string) (bool, error)) (string, error) {
	for attempts := 0; attempts < codeAttempts; attempts++ {
		b := make([]byte, codeLength)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLength)
		for i := range code {
			code[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
		}
		codeStr := string(code)

		taken, err := inUse(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if !taken {
			return codeStr, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique room code")
}
