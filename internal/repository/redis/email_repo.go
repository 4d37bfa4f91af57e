package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmailCodeTTL = 5 * time.Minute
	EmailCodePrefix     = "email:code"
)

var (
	ErrCodeSaveFailed = errors.New("email code save failed")
)

// EmailRepository 验证码按 scope(register/reset) 隔离
type EmailRepository struct {
	RDB *redis.Client
}

func (e *EmailRepository) client() *redis.Client {
	if e.RDB != nil {
		return e.RDB
	}
	return Client
}

func (e *EmailRepository) key(scope, email string) string {
	return fmt.Sprintf("%s:%s:%s", EmailCodePrefix, scope, email)
}

func (e *EmailRepository) SaveCode(ctx context.Context, scope, email, code string) error {
	if err := e.client().Set(ctx, e.key(scope, email), code, DefaultEmailCodeTTL).Err(); err != nil {
		return ErrCodeSaveFailed
	}
	return nil
}

// VerifyAndConsume 用 lua 原子地比对并一次性删除，验证码不可复用
func (e *EmailRepository) VerifyAndConsume(ctx context.Context, scope, email, code string) (bool, error) {
	script := `
local val = redis.call("GET", KEYS[1])
if not val then
  return 0
end
if val ~= ARGV[1] then
  return 0
end
redis.call("DEL", KEYS[1])
return 1
`
	res, err := e.client().Eval(ctx, script, []string{e.key(scope, email)}, code).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
