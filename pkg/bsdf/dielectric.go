package bsdf

import (
	"math"

	"github.com/lumenforge/lumen/pkg/core"
)

// Dielectric is a smooth refractive/reflective interface (glass), grounded
// directly on original_source/include/dort/dielectric_material.hpp's
// DielectricBxdf — including the non-symmetric radiance-scaling factor
// (ior_trans/ior_refl)^2 applied only on the light-path transmission
// branch, which is why Dielectric implements Bxdf directly instead of
// going through symmetricMethods.
type Dielectric struct {
	ReflectTint, TransmitTint core.Spectrum
	IorInside, IorOutside     float64
}

func NewDielectric(reflectTint, transmitTint core.Spectrum, iorInside, iorOutside float64) *Dielectric {
	return &Dielectric{
		ReflectTint:  reflectTint,
		TransmitTint: transmitTint,
		IorInside:    iorInside,
		IorOutside:   iorOutside,
	}
}

func (d *Dielectric) Flags() Flags { return Reflection | Transmission | Delta }

func (d *Dielectric) EvalF(wiLight, woCamera core.Vec3) core.Spectrum { return core.Spectrum{} }
func (d *Dielectric) LightFPdf(wiLight, woCamera core.Vec3) float64   { return 0 }
func (d *Dielectric) CameraFPdf(wiLight, woCamera core.Vec3) float64  { return 0 }

// iors returns (iorRefl, iorTrans) for a ray arriving from direction w:
// iorRefl is the medium w sits in, iorTrans the medium on the other side
// of the interface, following get_iors's w.z>=0 sign convention (the
// shading normal always points into IorOutside's medium).
func (d *Dielectric) iors(w core.Vec3) (iorRefl, iorTrans float64) {
	if w.Z >= 0 {
		return d.IorOutside, d.IorInside
	}
	return d.IorInside, d.IorOutside
}

// transmit refracts wFix through the interface given the two IORs;
// returns ok=false on total internal reflection.
func transmitDielectric(wFix core.Vec3, iorRefl, iorTrans float64) (core.Vec3, bool) {
	eta := iorRefl / iorTrans
	cosI := wFix.Z
	sin2T := eta * eta * math.Max(0, 1-cosI*cosI)
	if sin2T >= 1 {
		return core.Vec3{}, false
	}
	cosT := math.Sqrt(1 - sin2T)
	if cosI > 0 {
		cosT = -cosT
	}
	wGen := core.NewVec3(-eta*wFix.X, -eta*wFix.Y, cosT)
	return wGen, true
}

func reflectDielectric(wFix core.Vec3) core.Vec3 {
	return core.NewVec3(-wFix.X, -wFix.Y, wFix.Z)
}

// sample implements sample_light_f/sample_camera_f's shared body. u is an
// extra random number (distinct from uv) used to choose reflect-vs-refract
// according to the Fresnel term.
func (d *Dielectric) sample(wFix core.Vec3, u float64, fixIsLight bool) (wGen core.Vec3, pdf float64, f core.Spectrum, ok bool) {
	iorRefl, iorTrans := d.iors(wFix)
	fr := FresnelDielectric(AbsCosTheta(wFix), iorRefl, iorTrans)

	if fr >= u {
		wGen = reflectDielectric(wFix)
		pdf = fr
		f = d.ReflectTint.Mul(fr / AbsCosTheta(wFix))
		return wGen, pdf, f, true
	}

	wGen, refracted := transmitDielectric(wFix, iorRefl, iorTrans)
	if !refracted {
		return core.Vec3{}, 0, core.Spectrum{}, false
	}
	pdf = 1 - fr
	if fixIsLight {
		scale := (iorTrans / iorRefl) * (iorTrans / iorRefl)
		f = d.TransmitTint.Mul(scale * (1 - fr) / AbsCosTheta(wFix))
	} else {
		f = d.TransmitTint.Mul((1 - fr) / AbsCosTheta(wGen))
	}
	return wGen, pdf, f, true
}

// SampleLightF samples a direction to continue a path arriving from a
// light; pick supplies the reflect/refract decision variable (uv is
// unused — a smooth interface has no continuous dimension to sample).
func (d *Dielectric) SampleLightF(woCamera core.Vec3, pick float64, uv core.Vec2) (core.Vec3, float64, core.Spectrum, bool) {
	return d.sample(woCamera, pick, true)
}

func (d *Dielectric) SampleCameraF(wiLight core.Vec3, pick float64, uv core.Vec2) (core.Vec3, float64, core.Spectrum, bool) {
	return d.sample(wiLight, pick, false)
}
