// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Validator checks a loaded configuration.
type Validator interface {
	Validate(cfg *Config) error
}

// check is a single configuration rule; it returns nil when the rule holds.
type check func(cfg *Config) error

// ruleSet runs every check and reports all failures together.
type ruleSet []check

func (rs ruleSet) Validate(cfg *Config) error {
	var errs []error
	for _, c := range rs {
		if err := c(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BasicValidator holds the rules every environment must satisfy.
type BasicValidator struct{}

func (BasicValidator) Validate(cfg *Config) error {
	return ruleSet{
		func(c *Config) error { return requiredFields(reflect.ValueOf(c).Elem(), "") },
		func(c *Config) error {
			if c.Database.MaxConnections < c.Database.MinConnections {
				return errors.New("database max_connections must be >= min_connections")
			}
			return nil
		},
		positive("redis pool_size", func(c *Config) int { return c.Redis.PoolSize }),
		positive("rate_limit_requests", func(c *Config) int { return c.Security.RateLimitRequests }),
		func(c *Config) error {
			if c.Cache.DashboardTTL <= 0 || c.Cache.ProductTTL <= 0 {
				return errors.New("cache ttls must be positive")
			}
			return nil
		},
		kafkaRules,
	}.Validate(cfg)
}

// ProductionValidator adds the rules a production deployment must satisfy.
type ProductionValidator struct{}

func (ProductionValidator) Validate(cfg *Config) error {
	return ruleSet{
		func(c *Config) error {
			if isUnset(c.Database.Password) {
				return missing("database password")
			}
			return nil
		},
		func(c *Config) error {
			if c.Database.SSLMode == "disable" {
				return errors.New("database SSL must be enabled in production")
			}
			return nil
		},
		func(c *Config) error {
			if !c.Security.SecureHeaders {
				return errors.New("secure headers must be enabled in production")
			}
			return nil
		},
		func(c *Config) error {
			switch {
			case len(c.Security.AllowedOrigins) == 0:
				return errors.New("allowed origins must be configured in production")
			case slices.Contains(c.Security.AllowedOrigins, "*"):
				return errors.New("wildcard origin (*) not allowed in production")
			}
			return nil
		},
		func(c *Config) error {
			if c.AWS.S3Bucket == "" {
				return missing("export bucket")
			}
			return nil
		},
	}.Validate(cfg)
}

func kafkaRules(c *Config) error {
	if !c.Kafka.Enabled {
		return nil
	}
	var errs []error
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, missing("kafka brokers"))
	}
	if c.Kafka.LowStockTopic == "" {
		errs = append(errs, missing("kafka low stock topic"))
	}
	return errors.Join(errs...)
}

func positive(name string, get func(*Config) int) check {
	return func(c *Config) error {
		if get(c) <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
		return nil
	}
}

func missing(what string) error {
	return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, what)
}

// isUnset treats placeholders left by the secrets loader as empty.
func isUnset(s string) bool {
	return s == "" || strings.HasPrefix(s, "MISSING_")
}

// requiredFields walks the config and reports every field tagged
// `required:"true"` that holds its zero value.
func requiredFields(v reflect.Value, prefix string) error {
	var errs []error
	t := v.Type()
	for i := range v.NumField() {
		field, meta := v.Field(i), t.Field(i)
		path := meta.Name
		if prefix != "" {
			path = prefix + "." + path
		}

		if meta.Tag.Get("required") == "true" && unsetValue(field) {
			errs = append(errs, missing(path))
		}
		if field.Kind() == reflect.Struct {
			errs = append(errs, requiredFields(field, path))
		}
	}
	return errors.Join(errs...)
}

func unsetValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return isUnset(v.String())
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Struct:
		return false
	default:
		return v.IsZero()
	}
}
