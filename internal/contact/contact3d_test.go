package contact_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/nopaddleboat/crocoddyl/internal/contact"
	"github.com/nopaddleboat/crocoddyl/internal/core"
	"github.com/nopaddleboat/crocoddyl/internal/kinematics"
	"github.com/nopaddleboat/crocoddyl/internal/state"
)

var _ = Describe("Model3D", func() {
	var (
		provider *kinematics.Particle
		manifold *state.Vector
		x        []float64
	)

	newModel := func(ref mgl64.Vec3, gains [2]float64) *contact.Model3D {
		return contact.NewModel3D(manifold, kinematics.ParticleFrame, ref, contact.Local, 3, gains)
	}

	BeforeEach(func() {
		provider = kinematics.NewParticle()
		provider.SetState(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{-0.5, 0, 1})
		manifold = state.NewVector(6)
		x = []float64{1, 2, 3, -0.5, 0, 1}
	})

	Describe("CreateData", func() {
		It("rejects an unknown frame", func() {
			m := contact.NewModel3D(manifold, kinematics.FrameID(42), mgl64.Vec3{}, contact.Local, 3, [2]float64{})
			_, err := m.CreateData(provider)
			Expect(err).To(MatchError(core.ErrFrameNotFound))
		})

		It("rejects a manifold that does not match the provider", func() {
			m := contact.NewModel3D(state.NewVector(4), kinematics.ParticleFrame, mgl64.Vec3{}, contact.Local, 3, [2]float64{})
			_, err := m.CreateData(provider)
			Expect(err).To(MatchError(core.ErrDimension))
		})
	})

	Describe("Calc", func() {
		It("is idempotent at a fixed state", func() {
			m := newModel(mgl64.Vec3{0, 0, 0}, [2]float64{3, 1})
			d, err := m.CreateData(provider)
			Expect(err).NotTo(HaveOccurred())

			Expect(m.Calc(d, x)).To(Succeed())
			a0 := d.A0
			jc := append([]float64(nil), d.Jc.RawMatrix().Data...)

			Expect(m.Calc(d, x)).To(Succeed())
			Expect(d.A0).To(Equal(a0))
			Expect(d.Jc.RawMatrix().Data).To(Equal(jc))
		})

		It("returns the raw translational acceleration with zero gains", func() {
			provider.Accel = mgl64.Vec3{0.7, -0.2, 0.1}
			m := newModel(mgl64.Vec3{9, 9, 9}, [2]float64{})
			d, _ := m.CreateData(provider)

			Expect(m.Calc(d, x)).To(Succeed())
			Expect(d.A0).To(Equal(mgl64.Vec3{0.7, -0.2, 0.1}))
		})

		It("pushes the drift toward the reference with a position gain", func() {
			// Reference sits behind the frame along x, so the position error
			// is positive and the correction must carry its sign.
			m := newModel(mgl64.Vec3{0, 2, 3}, [2]float64{5, 0})
			d, _ := m.CreateData(provider)
			provider.SetState(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{})

			Expect(m.Calc(d, x)).To(Succeed())
			Expect(d.A0.X()).To(BeNumerically("~", 5*1.0, 1e-12))
			Expect(d.A0.Y()).To(BeNumerically("~", 0, 1e-12))
			Expect(d.A0.Z()).To(BeNumerically("~", 0, 1e-12))
		})

		It("damps the frame velocity with a velocity gain", func() {
			m := newModel(mgl64.Vec3{1, 2, 3}, [2]float64{0, 2})
			d, _ := m.CreateData(provider)

			Expect(m.Calc(d, x)).To(Succeed())
			Expect(d.A0).To(Equal(mgl64.Vec3{-1, 0, 2}))
		})

		It("produces identical results in both conventions for an aligned frame", func() {
			gains := [2]float64{3, 1}
			local := newModel(mgl64.Vec3{0, 0, 0}, gains)
			world := contact.NewModel3D(manifold, kinematics.ParticleFrame, mgl64.Vec3{0, 0, 0}, contact.LocalWorldAligned, 3, gains)

			dl, _ := local.CreateData(provider)
			dw, _ := world.CreateData(provider)
			Expect(local.Calc(dl, x)).To(Succeed())
			Expect(world.Calc(dw, x)).To(Succeed())

			Expect(dw.A0).To(Equal(dl.A0))
			Expect(dw.Jc.RawMatrix().Data).To(Equal(dl.Jc.RawMatrix().Data))
		})

		It("honors SetReference on the next evaluation", func() {
			m := newModel(mgl64.Vec3{1, 2, 3}, [2]float64{1, 0})
			d, _ := m.CreateData(provider)

			Expect(m.Calc(d, x)).To(Succeed())
			Expect(d.A0).To(Equal(mgl64.Vec3{}))

			m.SetReference(mgl64.Vec3{0, 2, 3})
			Expect(m.Calc(d, x)).To(Succeed())
			Expect(d.A0.X()).To(BeNumerically("~", 1, 1e-12))
		})
	})

	Describe("CalcDiff", func() {
		It("fails before Calc", func() {
			m := newModel(mgl64.Vec3{}, [2]float64{})
			d, _ := m.CreateData(provider)
			Expect(m.CalcDiff(d, x)).To(MatchError(core.ErrBadCallOrder))
		})

		It("reduces to the gain-scaled Jacobian blocks for a particle", func() {
			// For a translating point the kinematic partials vanish, so the
			// drift partials are exactly the Baumgarte contributions:
			// gains[0]*I in the position block, gains[1]*I in the velocity
			// block.
			m := newModel(mgl64.Vec3{0, 0, 0}, [2]float64{4, 2})
			d, _ := m.CreateData(provider)
			provider.SetState(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{})

			Expect(m.Calc(d, x)).To(Succeed())
			Expect(m.CalcDiff(d, x)).To(Succeed())

			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					want := 0.0
					if i == j {
						want = 4
					}
					Expect(d.Da0Dx.At(i, j)).To(BeNumerically("~", want, 1e-12))

					want = 0
					if i == j {
						want = 2
					}
					Expect(d.Da0Dx.At(i, j+3)).To(BeNumerically("~", want, 1e-12))
				}
			}
		})
	})

	Describe("UpdateForce", func() {
		It("rejects a force of the wrong dimension", func() {
			m := newModel(mgl64.Vec3{}, [2]float64{})
			d, _ := m.CreateData(provider)
			Expect(m.Calc(d, x)).To(Succeed())
			Expect(m.UpdateForce(d, []float64{1, 2})).To(MatchError(core.ErrDimension))
		})

		It("stores a zero-moment spatial force", func() {
			m := newModel(mgl64.Vec3{}, [2]float64{})
			d, _ := m.CreateData(provider)
			Expect(m.Calc(d, x)).To(Succeed())

			Expect(m.UpdateForce(d, []float64{1, -2, 3})).To(Succeed())
			Expect(d.F.Lin).To(Equal(mgl64.Vec3{1, -2, 3}))
			Expect(d.F.Ang).To(Equal(mgl64.Vec3{}))
		})
	})
})

var _ = Describe("Model3D on a rotating frame", func() {
	const lever = 0.8

	var (
		r        *rotor
		manifold *state.Vector
		x        []float64
	)

	install := func(xp []float64) {
		r.q, r.qd = xp[0], xp[1]
	}

	BeforeEach(func() {
		r = &rotor{lever: lever}
		manifold = state.NewVector(2)
		x = []float64{0.7, 1.3}
		install(x)
	})

	It("rotates the local quantities into world axes", func() {
		gains := [2]float64{2, 0.5}
		ref := mgl64.Vec3{0.3, -0.2, 0.1}
		local := contact.NewModel3D(manifold, rotorFrame, ref, contact.Local, 1, gains)
		world := contact.NewModel3D(manifold, rotorFrame, ref, contact.LocalWorldAligned, 1, gains)

		dl, err := local.CreateData(r)
		Expect(err).NotTo(HaveOccurred())
		dw, err := world.CreateData(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(local.Calc(dl, x)).To(Succeed())
		Expect(world.Calc(dw, x)).To(Succeed())

		rot := mgl64.Rotate3DZ(x[0])
		a0Want := rot.Mul3x1(dl.A0)
		jcWant := rot.Mul3x1(mgl64.Vec3{dl.Jc.At(0, 0), dl.Jc.At(1, 0), dl.Jc.At(2, 0)})
		for i := 0; i < 3; i++ {
			Expect(dw.A0[i]).To(BeNumerically("~", a0Want[i], 1e-12))
			Expect(dw.Jc.At(i, 0)).To(BeNumerically("~", jcWant[i], 1e-12))
		}
	})

	It("matches finite differences of the world-aligned drift", func() {
		m := contact.NewModel3D(manifold, rotorFrame, mgl64.Vec3{0.3, -0.2, 0.1},
			contact.LocalWorldAligned, 1, [2]float64{2, 0.5})
		d, err := m.CreateData(r)
		Expect(err).NotTo(HaveOccurred())

		Expect(m.Calc(d, x)).To(Succeed())
		Expect(m.CalcDiff(d, x)).To(Succeed())

		const h = 1e-6
		scratch, _ := m.CreateData(r)
		for i := 0; i < 2; i++ {
			xp := append([]float64(nil), x...)
			xp[i] += h
			install(xp)
			Expect(m.Calc(scratch, xp)).To(Succeed())
			plus := scratch.A0

			xm := append([]float64(nil), x...)
			xm[i] -= h
			install(xm)
			Expect(m.Calc(scratch, xm)).To(Succeed())
			minus := scratch.A0

			for row := 0; row < 3; row++ {
				fd := (plus[row] - minus[row]) / (2 * h)
				Expect(d.Da0Dx.At(row, i)).To(BeNumerically("~", fd, 1e-6))
			}
		}
	})

	It("stores the force back-rotated into the contact frame", func() {
		r.q = math.Pi / 2
		m := contact.NewModel3D(manifold, rotorFrame, mgl64.Vec3{}, contact.LocalWorldAligned, 1, [2]float64{})
		d, err := m.CreateData(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Calc(d, []float64{r.q, r.qd})).To(Succeed())

		Expect(m.UpdateForce(d, []float64{1, 2, 3})).To(Succeed())
		Expect(d.F.Lin[0]).To(BeNumerically("~", 2, 1e-12))
		Expect(d.F.Lin[1]).To(BeNumerically("~", -1, 1e-12))
		Expect(d.F.Lin[2]).To(BeNumerically("~", 3, 1e-12))
		Expect(d.F.Ang).To(Equal(mgl64.Vec3{}))
	})
})

const rotorFrame kinematics.FrameID = 0

// rotor is a single revolute joint about the world z axis carrying its frame
// at a fixed lever along the joint x axis, so the frame rotation varies with
// the configuration. q and qd are installed directly by the tests.
type rotor struct {
	lever float64
	q, qd float64
}

func (r *rotor) NV() int { return 1 }

func (r *rotor) HasFrame(id kinematics.FrameID) bool { return id == rotorFrame }

func (r *rotor) Placement(kinematics.FrameID) kinematics.SE3 {
	rot := mgl64.Rotate3DZ(r.q)
	return kinematics.SE3{R: rot, T: rot.Mul3x1(mgl64.Vec3{r.lever, 0, 0})}
}

func (r *rotor) LocalPlacement(kinematics.FrameID) kinematics.SE3 {
	return kinematics.SE3{R: mgl64.Ident3(), T: mgl64.Vec3{r.lever, 0, 0}}
}

func (r *rotor) SpatialVelocity(kinematics.FrameID) kinematics.Motion {
	return kinematics.Motion{
		Lin: mgl64.Vec3{0, r.lever * r.qd, 0},
		Ang: mgl64.Vec3{0, 0, r.qd},
	}
}

func (r *rotor) SpatialAcceleration(kinematics.FrameID) kinematics.Motion {
	return kinematics.Motion{}
}

func (r *rotor) FrameJacobian(kinematics.FrameID) *mat.Dense {
	j := mat.NewDense(6, 1, nil)
	j.Set(1, 0, r.lever)
	j.Set(5, 0, 1)
	return j
}

func (r *rotor) VelocityPartials(kinematics.FrameID) (*mat.Dense, *mat.Dense) {
	dv := mat.NewDense(6, 1, nil)
	dv.Set(5, 0, 1)
	return mat.NewDense(6, 1, nil), dv
}

func (r *rotor) AccelerationPartials(kinematics.FrameID) (*mat.Dense, *mat.Dense, *mat.Dense) {
	da := mat.NewDense(6, 1, nil)
	da.Set(5, 0, 1)
	return mat.NewDense(6, 1, nil), mat.NewDense(6, 1, nil), da
}
