package pkg

import (
	cryptoRand "crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"
)

func RandDigits(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + x.Int64()))
	}
	return b.String(), nil
}

// RandToken 生成待审帖子的队列令牌；与入库后的帖子 id 是两个独立的标识空间
func RandToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := cryptoRand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
