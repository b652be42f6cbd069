package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate 校验字段约束与跨字段规则。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if c.Store.Driver == "redis" && c.Store.Redis.Addr == "" {
		return errors.New("store.redis.addr is required when store.driver is redis")
	}
	if _, err := c.Schema.Registry(); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
