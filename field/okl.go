package field

import "fmt"

// OKL sources for the accelerator variants of the elementwise operations.
// Every kernel takes the dispatch range (lo, hi) first; indices carry no
// dependencies, so a plain @tile split is enough.

func fillOKL(name, ctype string) string {
	return fmt.Sprintf(`
@kernel void %[1]s(const int lo, const int hi,
                   %[2]s *v, const %[2]s value) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		v[i] = value;
	}
}
`, name, ctype)
}

func binaryOKL(name, ctype, opName string) string {
	var stmt string
	switch opName {
	case "add":
		stmt = "a[i] += b[i];"
	case "sub":
		stmt = "a[i] -= b[i];"
	case "mul":
		stmt = "a[i] *= b[i];"
	default:
		panic("field: unknown elementwise op " + opName)
	}
	return fmt.Sprintf(`
@kernel void %[1]s(const int lo, const int hi,
                   %[2]s *a, const %[2]s *b) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		%[3]s
	}
}
`, name, ctype, stmt)
}

func scaleOKL(name, ctype string) string {
	return fmt.Sprintf(`
@kernel void %[1]s(const int lo, const int hi,
                   %[2]s *a, const %[2]s value) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		a[i] *= value;
	}
}
`, name, ctype)
}
