// Package policy evaluates an optional Starlark patch policy. A
// policy file decides, per patch, whether the files it touches may be
// applied automatically, need interactive approval, or are refused
// outright. No policy file means everything is allowed.
package policy

import (
	"fmt"
	"os"

	"go.starlark.net/starlark"
)

// DefaultFileName is looked up under the repository root.
const DefaultFileName = ".autodev/policy.star"

// entryPoint is the function a policy file must define:
//
//	def allow_patch(files):
//	    ...
//
// It receives the list of file paths the patch touches and returns
// either a bool (True=allow, False=deny) or one of the strings
// "allow", "ask", "deny".
const entryPoint = "allow_patch"

// Verdict is the policy decision for one patch.
type Verdict string

const (
	VerdictAllow Verdict = "allow"
	VerdictAsk   Verdict = "ask"
	VerdictDeny  Verdict = "deny"
)

// LoadSource reads the policy file at path. A missing file is not an
// error; it returns empty source, meaning allow-everything.
func LoadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read policy file: %w", err)
	}
	return string(data), nil
}

// Policy is a compiled patch policy.
type Policy struct {
	fn starlark.Value
}

// Compile executes the policy source and resolves the entry point.
// Empty source compiles to a nil policy that allows everything.
func Compile(source string) (*Policy, error) {
	if source == "" {
		return &Policy{}, nil
	}

	thread := &starlark.Thread{Name: "patch_policy"}
	globals, err := starlark.ExecFile(thread, DefaultFileName, source, nil)
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}

	fn, ok := globals[entryPoint]
	if !ok {
		return nil, fmt.Errorf("policy: %s function not defined", entryPoint)
	}
	return &Policy{fn: fn}, nil
}

// Check evaluates the policy for the files a patch touches.
func (p *Policy) Check(files []string) (Verdict, error) {
	if p.fn == nil {
		return VerdictAllow, nil
	}

	list := make([]starlark.Value, len(files))
	for i, f := range files {
		list[i] = starlark.String(f)
	}

	thread := &starlark.Thread{Name: "patch_policy"}
	result, err := starlark.Call(thread, p.fn, starlark.Tuple{starlark.NewList(list)}, nil)
	if err != nil {
		return VerdictDeny, fmt.Errorf("policy: %s: %w", entryPoint, err)
	}

	switch v := result.(type) {
	case starlark.Bool:
		if bool(v) {
			return VerdictAllow, nil
		}
		return VerdictDeny, nil
	case starlark.String:
		switch Verdict(v) {
		case VerdictAllow, VerdictAsk, VerdictDeny:
			return Verdict(v), nil
		}
		return VerdictDeny, fmt.Errorf("policy: %s returned unknown verdict %q", entryPoint, string(v))
	default:
		return VerdictDeny, fmt.Errorf("policy: %s returned %s, want bool or string", entryPoint, result.Type())
	}
}
