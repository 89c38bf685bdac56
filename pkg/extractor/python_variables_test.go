package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moduleWithVariables = `a = 1
b = 2
c = 3
myList = range(10)

def someMethod(x):
    something = x * 2
    return something

f = someMethod(b)

print(f)`

func TestVariableNames(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []string
	}{
		{"simple", "x = 7", []string{"x"}},
		{"loads are not names", "x = y + 7", []string{"x"}},
		{"constant", "PI = 3.14", []string{"PI"}},
		{"expression only", "1 + 0", nil},
		{"breadth first", moduleWithVariables, []string{"a", "b", "c", "myList", "f", "something"}},
		{"unpacking", "a, (b, *c) = values", []string{"a", "b", "c"}},
		{"attributes and subscripts", "self.x = 1\nd[k] = 2", nil},
		{"augmented", "total += 1", []string{"total"}},
		{"annotated", "count: int = 0", []string{"count"}},
		{"for target", "for i, v in pairs:\n    pass", []string{"i", "v"}},
		{"with target", "with open(p) as fh:\n    pass", []string{"fh"}},
		{"walrus", "if (n := len(a)) > 10:\n    pass", []string{"n"}},
		{"comprehension", "squares = [x * x for x in data]", []string{"squares", "x"}},
		{"except binding is not a variable", "try:\n    pass\nexcept OSError as err:\n    pass", nil},
		{"loop target is a statement child", "x = 1\nfor i in y:\n    pass", []string{"x", "i"}},
		{"chained targets are siblings", "a = b = 1\nc = 2", []string{"a", "b", "c"}},
		{"shallow before deep", "a = b = 1\nwith open(f) as (p, q):\n    pass\n*s, t = u\nfor r in x:\n    d = 2\nc = 3",
			[]string{"a", "b", "r", "c", "t", "d", "p", "q", "s"}},
		{"each elif nests one deeper", "if a:\n    pass\nelif b:\n    z = 1\nn = 2\nif c:\n    y = 1", []string{"n", "y", "z"}},
		{"else after elif", "if a:\n    pass\nelif b:\n    pass\nelse:\n    w = 1\nif c:\n    v = 1", []string{"v", "w"}},
		{"decorated function body", "@wrap\ndef f():\n    k = 1\nif c:\n    j = 1", []string{"k", "j"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VariableNames(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConstants(t *testing.T) {
	tests := []struct {
		code string
		want []string
	}{
		{"x = 7", nil},
		{"PI = 3.14", []string{"PI"}},
		{"1 + 0", nil},
		{"MAX_SIZE = 10\nmin_size = 1\n_ = 2", []string{"MAX_SIZE"}},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := Constants(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
