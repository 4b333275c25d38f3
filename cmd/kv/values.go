package kv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/ValentinKolb/prefKV/lib/store"
)

// Types lists the value types accepted by --type
var Types = []string{"string", "int", "long", "float", "double", "bool", "set"}

// put adds a put of raw, parsed as typ, to the editor
func put(e *store.Editor, typ, key, raw string) error {
	switch typ {
	case "string":
		e.PutString(key, raw)
	case "int":
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("value must be a 32 bit integer: %w", err)
		}
		e.PutInt(key, int32(n))
	case "long":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("value must be a 64 bit integer: %w", err)
		}
		e.PutLong(key, n)
	case "float":
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return fmt.Errorf("value must be a number: %w", err)
		}
		e.PutFloat(key, float32(f))
	case "double":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("value must be a number: %w", err)
		}
		e.PutDouble(key, f)
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("value must be a boolean: %w", err)
		}
		e.PutBool(key, b)
	case "set":
		e.PutStringSet(key, splitSet(raw))
	default:
		return invalidType(typ)
	}
	return nil
}

// get reads key with the typed getter of typ and formats the result
func get(p store.Prefs, typ, key string) (string, error) {
	switch typ {
	case "string":
		return p.GetString(key), nil
	case "int":
		return strconv.FormatInt(int64(p.GetInt(key)), 10), nil
	case "long":
		return strconv.FormatInt(p.GetLong(key), 10), nil
	case "float":
		return strconv.FormatFloat(float64(p.GetFloat(key)), 'g', -1, 32), nil
	case "double":
		return strconv.FormatFloat(p.GetDouble(key), 'g', -1, 64), nil
	case "bool":
		return strconv.FormatBool(p.GetBool(key)), nil
	case "set":
		return strings.Join(p.GetStringSetOr(key, nil), ","), nil
	default:
		return "", invalidType(typ)
	}
}

// formatValue formats a stored value the same way get does for its own type
func formatValue(v db.Value) string {
	switch v.Type {
	case db.TypeString:
		return v.AsString()
	case db.TypeInt:
		return strconv.FormatInt(int64(v.AsInt()), 10)
	case db.TypeLong:
		return strconv.FormatInt(v.AsLong(), 10)
	case db.TypeFloat:
		return strconv.FormatFloat(float64(v.AsFloat()), 'g', -1, 32)
	case db.TypeBool:
		return strconv.FormatBool(v.AsBool())
	case db.TypeStringSet:
		return strings.Join(v.AsStringSet(), ",")
	default:
		return ""
	}
}

// splitSet splits a comma separated list, empty members are dropped
func splitSet(raw string) []string {
	members := make([]string, 0)
	for _, m := range strings.Split(raw, ",") {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	return members
}

func invalidType(typ string) error {
	return fmt.Errorf("invalid type %q (expected one of: %s)", typ, strings.Join(Types, ", "))
}
