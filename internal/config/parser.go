package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/gomod-sbom/internal/platform"
)

// FileValues maps input names to the string form of values set in a config
// file.
type FileValues map[string]string

// Parser evaluates Lua config files with platform facts injected.
type Parser struct {
	detector platform.Detector
	log      *zap.SugaredLogger
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector skips the platform table.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, log: zap.NewNop().Sugar()}
}

// WithLogger sets the parser's logger.
func (p *Parser) WithLogger(log *zap.SugaredLogger) *Parser {
	if log != nil {
		p.log = log
	}
	return p
}

// ParseFile reads and evaluates the config file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (FileValues, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if info.Size() > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%d bytes exceeds limit of %d", info.Size(), MaxConfigSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	p.log.Debugw("parsing config file", "path", path)
	return p.ParseString(ctx, string(data))
}

// ParseString evaluates Lua source and extracts the sbom table.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (FileValues, error) {
	if len(luaCode) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config too large",
			Detail:  fmt.Sprintf("%d bytes exceeds limit of %d", len(luaCode), MaxConfigSize),
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultParseTimeout)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("evaluate config: %w", ctxErr)
		}
		p.log.Debugw("config evaluation failed", "error", err.Error())
		return nil, &ParseError{
			Message: "Lua error",
			Detail:  luaMessage(err),
		}
	}

	values, err := extractValues(L)
	if err != nil {
		return nil, err
	}

	p.log.Debugw("parsed config", "inputs", values.Names())
	return values, nil
}

// Names returns the set input names in sorted order.
func (v FileValues) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// extractValues reads the global sbom table.
func extractValues(L *lua.LState) (FileValues, error) {
	global := L.GetGlobal(luaGlobalSBOM)
	if global.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: "missing or invalid 'sbom' table",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	values := make(FileValues)
	var firstErr error

	global.(*lua.LTable).ForEach(func(key, value lua.LValue) {
		if firstErr != nil {
			return
		}

		if key.Type() != lua.LTString {
			firstErr = &ValidationError{
				Field:   luaGlobalSBOM,
				Message: fmt.Sprintf("keys must be strings, got %s", key.Type()),
				Err:     ErrInvalidInput,
			}
			return
		}

		field := key.String()
		name := strings.ReplaceAll(field, "_", "-")
		if !fileInputs[name] {
			firstErr = &ValidationError{Field: field, Message: "unknown input", Err: ErrInvalidInput}
			return
		}

		switch v := value.(type) {
		case lua.LString:
			values[name] = string(v)
		case lua.LBool:
			values[name] = strconv.FormatBool(bool(v))
		case lua.LNumber:
			values[name] = strconv.FormatFloat(float64(v), 'f', -1, 64)
		default:
			if value.Type() == lua.LTNil {
				return
			}
			firstErr = &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("expected string, boolean or number, got %s", value.Type()),
				Err:     ErrInvalidInput,
			}
		}
	})

	if firstErr != nil {
		return nil, firstErr
	}
	return values, nil
}

// luaMessage returns the error text without the interpreter's stack
// traceback.
func luaMessage(err error) string {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		return strings.TrimSpace(apiErr.Object.String())
	}
	msg := err.Error()
	if idx := strings.Index(msg, "stack traceback"); idx >= 0 {
		msg = msg[:idx]
	}
	return strings.TrimSpace(msg)
}
