package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"k8s.io/apimachinery/pkg/runtime/schema"
	k8svalidation "k8s.io/apimachinery/pkg/util/validation"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	validateErr  error
)

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report yaml keys in validation errors.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("k8s_dns1123_label", func(fl validator.FieldLevel) bool {
		return len(k8svalidation.IsDNS1123Label(fl.Field().String())) == 0
	}); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation("k8s_resource", func(fl validator.FieldLevel) bool {
		gvr, _ := schema.ParseResourceArg(fl.Field().String())
		return gvr != nil && gvr.Version != ""
	}); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate checks the configuration and reports every invalid key.
func (c *Config) Validate() error {
	validateOnce.Do(func() {
		validate, validateErr = newValidator()
	})
	if validateErr != nil {
		return validateErr
	}
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Channels returns ChannelResources as resources. Validate guarantees
// that every entry parses.
func (c *Config) Channels() []schema.GroupVersionResource {
	out := make([]schema.GroupVersionResource, 0, len(c.ChannelResources))
	for _, r := range c.ChannelResources {
		if gvr, _ := schema.ParseResourceArg(r); gvr != nil {
			out = append(out, *gvr)
		}
	}
	return out
}
