package util

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
)

// LoadConfig fills the fields of the struct c points to from the environment
// variables prefix+FieldName. Strings are taken verbatim, everything else is
// decoded as JSON. Fields that are already set act as defaults and fields
// tagged `config:"optional"` may stay zero.
func LoadConfig(prefix string, c any) error {
	rv := reflect.ValueOf(c)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config must be a pointer to a struct, not %T", c)
	}
	rt, rc := rv.Type().Elem(), rv.Elem()
	for i := 0; i < rt.NumField(); i++ {
		rft := rt.Field(i)
		if !rft.IsExported() {
			continue
		}
		k := prefix + rft.Name
		s, ok := os.LookupEnv(k)
		if !ok && !rc.Field(i).IsZero() {
			continue
		} else if !ok && rft.Tag.Get("config") == "optional" {
			continue
		} else if !ok {
			return fmt.Errorf("failed to lookup field %q in env", k)
		}
		if rft.Type.Kind() == reflect.String {
			rc.Field(i).SetString(s)
		} else if err := json.Unmarshal([]byte(s), rc.Field(i).Addr().Interface()); err != nil {
			return fmt.Errorf("failed to unmarshal %q(%s) from %q", k, rft.Type, s)
		}
	}
	return nil
}
