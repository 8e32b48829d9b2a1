package consumer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keyseq/internal/event/broadcast"
	"github.com/dshills/keyseq/internal/logging"
	"github.com/dshills/keyseq/internal/sequence"
)

// HookFunction is the global Lua function called for every snapshot.
const HookFunction = "on_sequence"

// Hook errors.
var (
	ErrNoHookFunction = errors.New("script does not define " + HookFunction)
	ErrHookClosed     = errors.New("script hook closed")
)

// ScriptHook calls a Lua function with every snapshot.
//
// gopher-lua states are not goroutine-safe; all access to L goes through mu.
type ScriptHook struct {
	mu     sync.Mutex
	L      *lua.LState
	closed bool
	logger *logging.Logger

	calls    atomic.Uint64
	failures atomic.Uint64
}

// HookOption configures a ScriptHook.
type HookOption func(*ScriptHook)

// WithHookLogger sets the logger. Scripts write to it through log(msg).
func WithHookLogger(l *logging.Logger) HookOption {
	return func(h *ScriptHook) {
		h.logger = l
	}
}

// LoadScriptHook runs the Lua file at path and returns a hook bound to its
// on_sequence function.
func LoadScriptHook(path string, opts ...HookOption) (*ScriptHook, error) {
	return newScriptHook(func(L *lua.LState) error { return L.DoFile(path) }, opts...)
}

// NewScriptHook is like LoadScriptHook but takes the script source.
func NewScriptHook(code string, opts ...HookOption) (*ScriptHook, error) {
	return newScriptHook(func(L *lua.LState) error { return L.DoString(code) }, opts...)
}

func newScriptHook(load func(*lua.LState) error, opts ...HookOption) (*ScriptHook, error) {
	h := &ScriptHook{}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = logging.OrNull(h.logger).WithComponent("hook")

	h.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(h.L)
	h.L.SetGlobal("log", h.L.NewFunction(h.luaLog))

	if err := protect(func() error { return load(h.L) }); err != nil {
		h.L.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	if h.L.GetGlobal(HookFunction).Type() != lua.LTFunction {
		h.L.Close()
		return nil, ErrNoHookFunction
	}
	return h, nil
}

// openSafeLibraries opens base, table, string and math. io, os, debug and
// package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// luaLog implements log(msg) for scripts.
func (h *ScriptHook) luaLog(L *lua.LState) int {
	h.logger.Info("%s", L.CheckString(1))
	return 0
}

// Call invokes on_sequence(s).
func (h *ScriptHook) Call(ctx context.Context, s string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHookClosed
	}

	h.calls.Add(1)
	h.L.SetContext(ctx)
	err := protect(func() error {
		return h.L.CallByParam(lua.P{
			Fn:      h.L.GetGlobal(HookFunction),
			NRet:    0,
			Protect: true,
		}, lua.LString(s))
	})
	if err != nil {
		h.failures.Add(1)
		return fmt.Errorf("%s: %w", HookFunction, err)
	}
	return nil
}

// Run calls the hook for every snapshot on rx until the subscription ends.
// Script errors are logged and do not stop the loop.
func (h *ScriptHook) Run(ctx context.Context, rx *broadcast.Receiver[string]) error {
	defer rx.Close()

	for {
		s, ok, reason := sequence.Recv(ctx, rx)
		if !ok {
			logEnd(h.logger, reason)
			return nil
		}
		if err := h.Call(ctx, s); err != nil {
			if errors.Is(err, ErrHookClosed) {
				return nil
			}
			h.logger.Warn("%v", err)
		}
	}
}

// Calls returns the number of hook invocations and how many failed.
func (h *ScriptHook) Calls() (calls, failures uint64) {
	return h.calls.Load(), h.failures.Load()
}

// Close releases the Lua state.
func (h *ScriptHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.L.Close()
}

// protect turns a Lua panic into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
