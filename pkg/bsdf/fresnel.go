package bsdf

import "math"

// FresnelDielectric evaluates the polarization-averaged Fresnel
// reflectance at a dielectric interface. cosI is the cosine of the angle
// of incidence measured against the interface normal on the side of
// etaI; the sign of cosI is not assumed, matching
// original_source/include/dort/dielectric_material.hpp's `fresnel`
// (there named with ior_refl/ior_trans rather than etaI/etaT, but the
// same exact-solution formula).
func FresnelDielectric(cosI, etaI, etaT float64) float64 {
	cosI = clamp(cosI, -1, 1)
	if cosI < 0 {
		etaI, etaT = etaT, etaI
		cosI = -cosI
	}
	sinT2 := etaI * etaI / (etaT * etaT) * math.Max(0, 1-cosI*cosI)
	if sinT2 >= 1 {
		return 1 // total internal reflection
	}
	cosT := math.Sqrt(1 - sinT2)
	rPar := (etaT*cosI - etaI*cosT) / (etaT*cosI + etaI*cosT)
	rPerp := (etaI*cosI - etaT*cosT) / (etaI*cosI + etaT*cosT)
	return 0.5 * (rPar*rPar + rPerp*rPerp)
}

// FresnelConductor evaluates reflectance at a conductor interface given
// its relative index of refraction eta and absorption coefficient k,
// following original_source/include/dort/fresnel.hpp's
// fresnel_conductor.
func FresnelConductor(cosI, eta, k float64) float64 {
	cosI = clamp(math.Abs(cosI), 0, 1)
	cos2 := cosI * cosI
	sin2 := 1 - cos2
	eta2 := eta * eta
	k2 := k * k

	t0 := eta2 - k2 - sin2
	a2b2 := math.Sqrt(math.Max(0, t0*t0+4*eta2*k2))
	t1 := a2b2 + cos2
	a := math.Sqrt(math.Max(0, 0.5*(a2b2+t0)))
	t2 := 2 * a * cosI
	rs := (t1 - t2) / (t1 + t2)

	t3 := cos2*a2b2 + sin2*sin2
	t4 := t2 * sin2
	rp := rs * (t3 - t4) / (t3 + t4)

	return 0.5 * (rs + rp)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
