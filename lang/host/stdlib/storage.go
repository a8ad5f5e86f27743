package stdlib

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mna/tickscript/lang/types"
)

const (
	storageMaxKeys      = 100
	storageMaxValSize   = 10 * 1024
	storageSyncInterval = 5 * time.Second
)

// Storage is the host_object ported from
// original_source/runtime/stdlib/storage.py's StorageWrapper: a bounded,
// debounced-to-disk key/value store scoped to a single script, unlike
// macro.py/system.py (two of the modules stdlib.go's package comment
// excludes) it needs nothing but a directory and a name, no live runtime
// instance or OS binding.
type Storage struct {
	name     string
	path     string
	cache    map[string]types.Value
	lastSave string
	lastSync time.Time

	syncInterval time.Duration
	autoSave     bool
}

var _ types.HostObject = (*Storage)(nil)

// NewStorage returns a Storage for the given script name, rooted at dir
// (created if necessary), loading any existing entries from
// dir/<sanitized name>.json. A missing or corrupt file starts empty,
// matching _load_file's `except: return {}`.
func NewStorage(dir, name string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	s := &Storage{
		name:         name,
		path:         filepath.Join(dir, sanitizeStorageName(name)+".json"),
		cache:        map[string]types.Value{},
		syncInterval: storageSyncInterval,
		autoSave:     true,
	}
	s.load()
	s.lastSave = s.marshalCache()
	s.lastSync = time.Now()
	return s, nil
}

func sanitizeStorageName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func (s *Storage) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return
	}
	for k, v := range raw {
		s.cache[k] = jsonToValue(v)
	}
}

func (s *Storage) marshalCache() string {
	raw := make(map[string]any, len(s.cache))
	for k, v := range s.cache {
		raw[k] = valueToJSON(v)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return s.lastSave
	}
	return string(data)
}

// sync writes the cache to disk if it differs from what was last written
// and either force is set or the sync interval has elapsed, ported from
// _sync(force). A write failure is swallowed, matching the original's
// bare `except: pass`.
func (s *Storage) sync(force bool) {
	if !s.autoSave && !force {
		return
	}
	now := time.Now()
	if !force && now.Sub(s.lastSync) < s.syncInterval {
		return
	}
	current := s.marshalCache()
	if current != s.lastSave {
		if err := os.WriteFile(s.path, []byte(current), 0o644); err == nil {
			s.lastSave = current
		}
	}
	s.lastSync = now
}

func (s *Storage) Type() string   { return "host" }
func (s *Storage) Truth() bool    { return true }
func (s *Storage) String() string { return fmt.Sprintf("<module storage %s>", s.name) }

var storageMethods = map[string]bool{
	"write": true, "read": true, "has": true, "delete": true,
	"clear": true, "save": true, "set_config": true,
}

func (s *Storage) GetAttr(name string) (types.Value, error) {
	if storageMethods[name] {
		return bindMethod(s, name), nil
	}
	return nil, &types.NoSuchAttrError{Type: "host", Name: name}
}

func (s *Storage) SetAttr(name string, _ types.Value) error {
	return &types.NoSuchAttrError{Type: "host", Name: name}
}

func (s *Storage) CallAttr(name string, positional []types.Value, keyword map[string]types.Value) (types.Value, error) {
	switch name {
	case "write":
		key, err := storageArg("write", positional, 0)
		if err != nil {
			return nil, err
		}
		val, err := storageArg("write", positional, 1)
		if err != nil {
			return nil, err
		}
		return types.Bool(s.write(key.String(), val)), nil

	case "read":
		key, err := storageArg("read", positional, 0)
		if err != nil {
			return nil, err
		}
		def := types.Value(types.None)
		if len(positional) > 1 {
			def = positional[1]
		}
		return s.read(key.String(), def), nil

	case "has":
		key, err := storageArg("has", positional, 0)
		if err != nil {
			return nil, err
		}
		return types.Bool(s.has(key.String())), nil

	case "delete":
		key, err := storageArg("delete", positional, 0)
		if err != nil {
			return nil, err
		}
		return types.Bool(s.delete(key.String())), nil

	case "clear":
		s.clear()
		return types.None, nil

	case "save":
		s.sync(true)
		return types.None, nil

	case "set_config":
		s.setConfig(positional, keyword)
		return types.None, nil

	default:
		return nil, &types.NoSuchAttrError{Type: "host", Name: name}
	}
}

// write stores value under key if under the max-keys/max-value-size
// bounds, returning whether it was stored, ported from `write`.
func (s *Storage) write(key string, value types.Value) bool {
	if _, exists := s.cache[key]; !exists && len(s.cache) >= storageMaxKeys {
		return false
	}
	data, err := json.Marshal(valueToJSON(value))
	if err != nil || len(data) > storageMaxValSize {
		return false
	}
	s.cache[key] = value
	s.sync(false)
	return true
}

func (s *Storage) read(key string, def types.Value) types.Value {
	s.sync(false)
	if v, ok := s.cache[key]; ok {
		return v
	}
	return def
}

func (s *Storage) has(key string) bool {
	s.sync(false)
	_, ok := s.cache[key]
	return ok
}

func (s *Storage) delete(key string) bool {
	if _, ok := s.cache[key]; !ok {
		return false
	}
	delete(s.cache, key)
	s.sync(false)
	return true
}

func (s *Storage) clear() {
	s.cache = map[string]types.Value{}
	s.sync(true)
}

// setConfig adjusts the sync interval (seconds) and/or auto-save flag,
// ported from `set_config(interval=None, auto_save=None)`.
func (s *Storage) setConfig(positional []types.Value, keyword map[string]types.Value) {
	if v, ok := keyword["interval"]; ok {
		if n, ok := v.(types.Number); ok {
			s.syncInterval = time.Duration(float64(n) * float64(time.Second))
		}
	} else if len(positional) > 0 {
		if n, ok := positional[0].(types.Number); ok {
			s.syncInterval = time.Duration(float64(n) * float64(time.Second))
		}
	}
	if v, ok := keyword["auto_save"]; ok {
		s.autoSave = v.Truth()
	} else if len(positional) > 1 {
		s.autoSave = positional[1].Truth()
	}
}

func storageArg(fn string, positional []types.Value, i int) (types.Value, error) {
	if i >= len(positional) {
		return nil, fmt.Errorf("storage.%s: missing argument", fn)
	}
	return positional[i], nil
}

// valueToJSON converts v to a plain Go value encoding/json can marshal,
// the scalar/list/map subset storage.py's json.dumps accepts (functions
// and other host objects are not persistable and collapse to null).
func valueToJSON(v types.Value) any {
	switch tv := v.(type) {
	case types.Null:
		return nil
	case types.Bool:
		return bool(tv)
	case types.Number:
		return float64(tv)
	case types.String:
		return string(tv)
	case *types.List:
		out := make([]any, len(tv.Elems))
		for i, e := range tv.Elems {
			out[i] = valueToJSON(e)
		}
		return out
	case *types.Map:
		out := make(map[string]any, tv.Len())
		for _, k := range tv.Keys() {
			ev, _, _ := tv.Get(k)
			out[k.String()] = valueToJSON(ev)
		}
		return out
	default:
		return nil
	}
}

// jsonToValue is valueToJSON's inverse for data decoded by encoding/json
// (so object values arrive as map[string]any, arrays as []any, and
// numbers as float64).
func jsonToValue(x any) types.Value {
	switch xv := x.(type) {
	case nil:
		return types.None
	case bool:
		return types.Bool(xv)
	case float64:
		return types.Number(xv)
	case string:
		return types.String(xv)
	case []any:
		elems := make([]types.Value, len(xv))
		for i, e := range xv {
			elems[i] = jsonToValue(e)
		}
		return types.NewList(elems)
	case map[string]any:
		m := types.NewMap(len(xv))
		for k, v := range xv {
			m.Set(types.String(k), jsonToValue(v))
		}
		return m
	default:
		return types.None
	}
}
