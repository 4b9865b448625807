package api

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"resumehub/internal/model"
)

var registerOnce sync.Once

// registerValidators installs the accountrole tag on gin's validator and
// reports field names by their json or uri tag.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "uri", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
		err := v.RegisterValidation("accountrole", func(fl validator.FieldLevel) bool {
			_, err := model.ParseRole(fl.Field().String())
			return err == nil
		})
		if err != nil {
			panic("register accountrole validator: " + err.Error())
		}
	})
}
