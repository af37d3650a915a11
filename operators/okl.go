package operators

import "fmt"

// OKL twins of the assembly loop bodies. Every kernel takes the dispatch
// range (lo, hi) first; coefficient-aware kernels end with the
// (coeffUniform, coeffHasSpan, coeffSpan) triple produced by
// Coeff.deviceArgs. Scatter targets shared between faces take @atomic
// updates; slots private to one face take plain ones.

const coeffParams = `const double coeffUniform,
                   const int coeffHasSpan,
                   const double *coeffSpan`

func upwindInternalOKL(name string) string {
	return fmt.Sprintf(`
@kernel void %s(const int lo, const int hi,
                const double *flux, const double *phi,
                const int *owner, const int *neighbour,
                double *out) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		const int cell = (flux[i] >= 0) ? owner[i] : neighbour[i];
		out[i] = phi[cell];
	}
}
`, name)
}

func upwindBoundaryOKL(name string) string {
	return fmt.Sprintf(`
@kernel void %s(const int lo, const int hi,
                const double *phi, const int *bOwner,
                double *out) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		out[i] = phi[bOwner[i - lo]];
	}
}
`, name)
}

func divScatterInternalOKL(name string) string {
	return fmt.Sprintf(`
@kernel void %s(const int lo, const int hi,
                const double *flux, const double *phif,
                const int *owner, const int *neighbour,
                double *res) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		const double f = flux[i] * phif[i];
		@atomic res[owner[i]] += f;
		@atomic res[neighbour[i]] -= f;
	}
}
`, name)
}

func divScatterBoundaryOKL(name string) string {
	return fmt.Sprintf(`
@kernel void %s(const int lo, const int hi,
                const double *flux, const double *phif,
                const int *bOwner,
                double *res) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		@atomic res[bOwner[i - lo]] += flux[i] * phif[i];
	}
}
`, name)
}

func divNormalizeOKL(name string) string {
	return fmt.Sprintf(`
@kernel void %s(const int lo, const int hi,
                const double *vol, double *res,
                %s) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		const double s = coeffUniform * (coeffHasSpan ? coeffSpan[i] : 1.0);
		res[i] *= s / vol[i];
	}
}
`, name, coeffParams)
}

func divImplicitInternalOKL(name string) string {
	return fmt.Sprintf(`
@kernel void %s(const int lo, const int hi,
                const double *flux,
                const int *owner, const int *neighbour,
                const int *rowOffs, const int *diagOff,
                const int *ownOff, const int *neiOff,
                double *vals,
                %s) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		const double f = flux[i];
		const double w = (f >= 0) ? 1.0 : 0.0;
		const int own = owner[i];
		const int nei = neighbour[i];
		const int rowOwn = rowOffs[own];
		const int rowNei = rowOffs[nei];
		const double sOwn = coeffUniform * (coeffHasSpan ? coeffSpan[own] : 1.0);
		const double sNei = coeffUniform * (coeffHasSpan ? coeffSpan[nei] : 1.0);

		const double vNei = -w * f;
		vals[rowNei + neiOff[i]] += vNei * sNei;
		@atomic vals[rowOwn + diagOff[own]] -= vNei * sOwn;

		const double vOwn = (1.0 - w) * f;
		vals[rowOwn + ownOff[i]] += vOwn * sOwn;
		@atomic vals[rowNei + diagOff[nei]] -= vOwn * sNei;
	}
}
`, name, coeffParams)
}

func divImplicitBoundaryOKL(name string) string {
	return fmt.Sprintf(`
@kernel void %s(const int lo, const int hi,
                const double *flux, const int *bOwner,
                const int *rowOffs, const int *diagOff,
                const double *frac, const double *ref,
                double *vals, double *rhs,
                %s) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		const int bc = i - lo;
		const double f = flux[i];
		const int own = bOwner[bc];
		const double s = coeffUniform * (coeffHasSpan ? coeffSpan[own] : 1.0);
		const double a = frac[bc];

		@atomic vals[rowOffs[own] + diagOff[own]] += f * s * (1.0 - a);
		@atomic rhs[own] -= f * s * a * ref[bc];
	}
}
`, name, coeffParams)
}

func ddtExplicitOKL(name string) string {
	return fmt.Sprintf(`
@kernel void %s(const int lo, const int hi,
                const double *phi, const double *phiOld,
                const double *vol, const double dt,
                double *src,
                %s) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		const double s = coeffUniform * (coeffHasSpan ? coeffSpan[i] : 1.0);
		src[i] += s * (phi[i] - phiOld[i]) / dt * vol[i];
	}
}
`, name, coeffParams)
}

func ddtImplicitOKL(name string) string {
	return fmt.Sprintf(`
@kernel void %s(const int lo, const int hi,
                const double *phiOld, const double *vol, const double dt,
                const int *rowOffs, const int *diagOff,
                double *vals, double *rhs,
                %s) {
	for (int i = lo; i < hi; ++i; @tile(256, @outer, @inner)) {
		const double s = coeffUniform * (coeffHasSpan ? coeffSpan[i] : 1.0);
		vals[rowOffs[i] + diagOff[i]] += s * vol[i] / dt;
		rhs[i] += s * phiOld[i] / dt * vol[i];
	}
}
`, name, coeffParams)
}
