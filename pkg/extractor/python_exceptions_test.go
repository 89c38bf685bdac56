package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-pyinspect/pkg/pyast"
	"github.com/l3aro/go-pyinspect/pkg/types"
)

var exceptionCases = []struct {
	name    string
	code    string
	handled []string
	raised  []string
}{
	{
		name:   "simple raise",
		code:   `raise ValueError('I cannot divide by zero')`,
		raised: []string{"ValueError"},
	},
	{
		name:   "raise in a branch",
		code:   "if d == 0:\n    raise ValueError('I cannot divide by zero')\nelse:\n    return n / d",
		raised: []string{"ValueError"},
	},
	{
		name:   "raise from another module",
		code:   `raise pint.UndefinedUnitError('"Foo" is not a valid unit')`,
		raised: []string{"pint.UndefinedUnitError"},
	},
	{
		name:    "same custom error raised explicitly",
		code:    "try:\n\tpass\nexcept pint.UndefinedUnitError:\n\traise pint.UndefinedUnitError('\"Foo\" is not a valid unit')",
		handled: []string{"pint.UndefinedUnitError"},
		raised:  []string{"pint.UndefinedUnitError"},
	},
	{
		name:    "custom error named before except",
		code:    "e = pint.UndefinedUnitError('\"Foo\" is not a valid unit')\ntry:\n\tpass\nexcept e:\n\traise e",
		handled: []string{"e"},
		raised:  []string{"e"},
	},
	{
		name:    "custom error bound in except",
		code:    "try:\n\tpass\nexcept pint.UndefinedUnitError as e:\n\traise e",
		handled: []string{"pint.UndefinedUnitError"},
		raised:  []string{"pint.UndefinedUnitError"},
	},
	{
		name:    "same builtin raised explicitly",
		code:    "try:\n\tpass\nexcept RuntimeError:\n\traise RuntimeError('\"Foo\" is not a valid unit')",
		handled: []string{"RuntimeError"},
		raised:  []string{"RuntimeError"},
	},
	{
		name:    "builtin named before except",
		code:    "e = ValueError('\"Foo\" is not a valid unit')\ntry:\n\tpass\nexcept e:\n\traise e",
		handled: []string{"e"},
		raised:  []string{"e"},
	},
	{
		name:    "builtin bound in except",
		code:    "try:\n\tpass\nexcept RuntimeError as e:\n\traise e",
		handled: []string{"RuntimeError"},
		raised:  []string{"RuntimeError"},
	},
	{
		name:    "different custom error",
		code:    "try:\n\tpass\nexcept RuntimeError:\n\traise pint.UndefinedUnitError('\"Foo\" is not a valid unit')",
		handled: []string{"RuntimeError"},
		raised:  []string{"pint.UndefinedUnitError"},
	},
	{
		name:    "different custom error named before except",
		code:    "e = pint.UndefinedUnitError('\"Foo\" is not a valid unit')\ntry:\n\tpass\nexcept ValueError:\n\traise e",
		handled: []string{"ValueError"},
		raised:  []string{"e"},
	},
	{
		name:    "different builtin",
		code:    "try:\n\tpass\nexcept ValueError:\n\traise RuntimeError",
		handled: []string{"ValueError"},
		raised:  []string{"RuntimeError"},
	},
	{
		name:    "different builtin named before except",
		code:    "e = ValueError\ntry:\n\tpass\nexcept RuntimeError:\n\traise e",
		handled: []string{"RuntimeError"},
		raised:  []string{"e"},
	},
	{
		name:    "bare reraise of builtin",
		code:    "try:\n\tpass\nexcept RuntimeError:\n\traise",
		handled: []string{"RuntimeError"},
		raised:  []string{"RuntimeError"},
	},
	{
		name:    "bare reraise of custom error",
		code:    "try:\n\tpass\nexcept pint.UndefinedUnitError:\n\traise",
		handled: []string{"pint.UndefinedUnitError"},
		raised:  []string{"pint.UndefinedUnitError"},
	},
	{
		name:    "tuple with custom error raised explicitly",
		code:    "try:\n\tpass\nexcept (pint.UndefinedUnitError, pint.FooBarError):\n\traise pint.UndefinedUnitError('\"Foo\" is not a valid unit')",
		handled: []string{"pint.UndefinedUnitError", "pint.FooBarError"},
		raised:  []string{"pint.UndefinedUnitError"},
	},
	{
		name:    "tuple with custom error named before except",
		code:    "e = pint.UndefinedUnitError('\"Foo\" is not a valid unit')\ntry:\n\tpass\nexcept (e, pint.FooBarError):\n\traise e",
		handled: []string{"e", "pint.FooBarError"},
		raised:  []string{"e"},
	},
	{
		name:    "tuple of custom errors bound in except",
		code:    "try:\n\tpass\nexcept (pint.UndefinedUnitError, pint.FooBarError) as e:\n\traise e",
		handled: []string{"pint.UndefinedUnitError", "pint.FooBarError"},
		raised:  []string{"pint.UndefinedUnitError", "pint.FooBarError"},
	},
	{
		name:    "tuple with builtin raised explicitly",
		code:    "try:\n\tpass\nexcept (RuntimeError, RuntimeWarning):\n\traise RuntimeError('\"Foo\" is not a valid unit')",
		handled: []string{"RuntimeError", "RuntimeWarning"},
		raised:  []string{"RuntimeError"},
	},
	{
		name:    "tuple with builtin named before except",
		code:    "e = ValueError('\"Foo\" is not a valid unit')\ntry:\n\tpass\nexcept (e, RuntimeError):\n\traise e",
		handled: []string{"e", "RuntimeError"},
		raised:  []string{"e"},
	},
	{
		name:    "tuple of builtins bound in except",
		code:    "try:\n\tpass\nexcept (RuntimeError, RuntimeWarning) as e:\n\traise e",
		handled: []string{"RuntimeError", "RuntimeWarning"},
		raised:  []string{"RuntimeError", "RuntimeWarning"},
	},
	{
		name:    "tuple with different custom error",
		code:    "try:\n\tpass\nexcept (pint.AError, pint.BError):\n\traise pint.UndefinedUnitError('\"Foo\" is not a valid unit')",
		handled: []string{"pint.AError", "pint.BError"},
		raised:  []string{"pint.UndefinedUnitError"},
	},
	{
		name:    "tuple with different error named before except",
		code:    "e = pint.UndefinedUnitError('\"Foo\" is not a valid unit')\ntry:\n\tpass\nexcept (ValueError, RuntimeError):\n\traise e",
		handled: []string{"ValueError", "RuntimeError"},
		raised:  []string{"e"},
	},
	{
		name:    "tuple with different builtin",
		code:    "try:\n\tpass\nexcept (ValueError, AssertionError):\n\traise RuntimeError",
		handled: []string{"ValueError", "AssertionError"},
		raised:  []string{"RuntimeError"},
	},
	{
		name:    "tuple with different builtin named before except",
		code:    "e = ValueError\ntry:\n\tpass\nexcept (RuntimeError, RuntimeWarning):\n\traise e",
		handled: []string{"RuntimeError", "RuntimeWarning"},
		raised:  []string{"e"},
	},
	{
		name:    "tuple of builtins reraised",
		code:    "try:\n\tpass\nexcept (RuntimeError, RuntimeWarning):\n\traise",
		handled: []string{"RuntimeError", "RuntimeWarning"},
		raised:  []string{"RuntimeError", "RuntimeWarning"},
	},
	{
		name:    "tuple of custom errors reraised",
		code:    "try:\n\tpass\nexcept (pint.UndefinedUnitError, pint.AError):\n\traise",
		handled: []string{"pint.UndefinedUnitError", "pint.AError"},
		raised:  []string{"pint.UndefinedUnitError", "pint.AError"},
	},
}

func TestHandledExceptions(t *testing.T) {
	for _, tt := range exceptionCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HandledExceptions(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.handled, got)
		})
	}
}

func TestRaisedExceptions(t *testing.T) {
	for _, tt := range exceptionCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RaisedExceptions(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.raised, got)
		})
	}
}

func TestRaisedExceptionsEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []string
	}{
		{
			name: "bare raise outside a handler",
			code: "def f():\n    raise",
			want: nil,
		},
		{
			name: "unresolvable raise is dropped",
			code: "raise errors[0]\nraise ValueError",
			want: []string{"ValueError"},
		},
		{
			name: "dotted path is never partial",
			code: "raise a.b.C('x')\nraise get().Error('y')",
			want: []string{"a.b.C"},
		},
		{
			name: "raise from keeps the raised exception",
			code: "try:\n    pass\nexcept KeyError as e:\n    raise LookupError('x') from e",
			want: []string{"LookupError"},
		},
		{
			name: "handler raises come before the rest",
			code: "raise TypeError\ntry:\n    pass\nexcept OSError:\n    raise\n",
			want: []string{"OSError", "TypeError"},
		},
		{
			name: "re-raise under a called handler type",
			code: "try:\n\tpass\nexcept foo():\n\traise",
			want: nil,
		},
		{
			name: "bound name under a called handler type",
			code: "try:\n    pass\nexcept errors.pick() as e:\n    raise e",
			want: nil,
		},
		{
			name: "nested handlers both see the inner raise",
			code: "try:\n    pass\nexcept OSError:\n    try:\n        pass\n    except KeyError:\n        raise\n",
			want: []string{"OSError", "KeyError"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RaisedExceptions(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandledExceptionsEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []string
	}{
		{
			name: "bare except handles nothing",
			code: "try:\n    pass\nexcept:\n    pass",
			want: nil,
		},
		{
			name: "parenthesized single name",
			code: "try:\n    pass\nexcept (ValueError):\n    pass",
			want: []string{"ValueError"},
		},
		{
			name: "unknown tuple members are dropped",
			code: "try:\n    pass\nexcept (ValueError, errors[0], a.b.C):\n    pass",
			want: []string{"ValueError", "a.b.C"},
		},
		{
			name: "unknown handler type",
			code: "try:\n    pass\nexcept get_errors():\n    pass",
			want: nil,
		},
		{
			name: "called tuple members are dropped",
			code: "try:\n    pass\nexcept (ValueError, make(), pint.Error('x')):\n    pass",
			want: []string{"ValueError"},
		},
		{
			name: "handlers in source order",
			code: "try:\n    pass\nexcept KeyError:\n    pass\nexcept (OSError, IOError):\n    pass",
			want: []string{"KeyError", "OSError", "IOError"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HandledExceptions(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandlerRaised(t *testing.T) {
	code := "try:\n    return a  / b\nexcept ZeroDivisionError:\n    raise"

	tree, err := pyast.Parse(code)
	require.NoError(t, err)
	defer tree.Close()

	handlers := Handlers(tree)
	require.Len(t, handlers, 1)

	h := handlers[0]
	assert.Equal(t, ExprName, h.Types.Kind)
	assert.Empty(t, h.BoundName)
	assert.Equal(t, 3, h.Line)
	assert.NotNil(t, h.Body)
	assert.Equal(t, []string{"ZeroDivisionError"}, h.Raised())
}

func TestHandlerCalledType(t *testing.T) {
	tree, err := pyast.Parse("try:\n\tpass\nexcept foo():\n\traise")
	require.NoError(t, err)
	defer tree.Close()

	handlers := Handlers(tree)
	require.Len(t, handlers, 1)

	h := handlers[0]
	assert.Equal(t, ExprUnknown, h.Types.Kind)
	assert.Empty(t, h.Handled())
	assert.Empty(t, h.Raised())
}

func TestClassifyExpr(t *testing.T) {
	tests := []struct {
		code string
		kind ExprKind
		name string
	}{
		{"ValueError", ExprName, "ValueError"},
		{"pint.UndefinedUnitError", ExprAttribute, "pint.UndefinedUnitError"},
		{"ValueError('x')", ExprCallName, "ValueError"},
		{"a.b.C('x')", ExprCallAttribute, "a.b.C"},
		{"(A, B)", ExprTuple, ""},
		{"(A)", ExprName, "A"},
		{"errors[0]", ExprUnknown, ""},
		{"get().Error", ExprUnknown, ""},
		{"make()()", ExprUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			tree, err := pyast.Parse(tt.code)
			require.NoError(t, err)
			defer tree.Close()

			stmt := tree.Root().NamedChild(0)
			require.Equal(t, pyast.KindExpressionStatement, stmt.Type())

			expr := classifyExpr(stmt.NamedChild(0), tree.Source)
			assert.Equal(t, tt.kind, expr.Kind, expr.Kind.String())
			assert.Equal(t, tt.name, expr.Name)
		})
	}
}

func TestExceptionFlows(t *testing.T) {
	code := "try:\n    pass\nexcept (KeyError, IndexError) as err:\n    raise err\nexcept OSError:\n    raise RuntimeError('io')\n"

	flows, err := ExceptionFlows(code)
	require.NoError(t, err)

	assert.Equal(t, []types.ExceptionFlow{
		{LineNumber: 3, BoundName: "err", Handled: []string{"KeyError", "IndexError"}, Raised: []string{"KeyError", "IndexError"}},
		{LineNumber: 5, Handled: []string{"OSError"}, Raised: []string{"RuntimeError"}},
	}, flows)
}

func TestExceptionFlowsEmpty(t *testing.T) {
	flows, err := ExceptionFlows("x = 1")
	require.NoError(t, err)
	assert.Empty(t, flows)
}
