package kinematics

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// ParticleFrame is the single frame exposed by Particle.
const ParticleFrame FrameID = 0

// Particle is a minimal concrete Provider: a point translating freely in R^3,
// with the generalized coordinates equal to the world position. The frame
// axes stay world aligned, so the frame Jacobian is [I 0]^T and all
// configuration partials vanish. It is enough to exercise contact models in
// tests and demos without a full rigid-body engine.
type Particle struct {
	q mgl64.Vec3
	v mgl64.Vec3

	// Accel is the velocity-product spatial acceleration reported for the
	// frame; a real engine derives this from the dynamics, here it is just
	// installed by the caller.
	Accel mgl64.Vec3
}

func NewParticle() *Particle {
	return &Particle{}
}

// SetState installs the configuration and velocity the queries refer to.
func (p *Particle) SetState(q, v mgl64.Vec3) {
	p.q = q
	p.v = v
}

func (p *Particle) NV() int { return 3 }

func (p *Particle) HasFrame(id FrameID) bool { return id == ParticleFrame }

func (p *Particle) Placement(id FrameID) SE3 {
	return SE3{R: mgl64.Ident3(), T: p.q}
}

func (p *Particle) LocalPlacement(id FrameID) SE3 {
	return Identity()
}

func (p *Particle) SpatialVelocity(id FrameID) Motion {
	return Motion{Lin: p.v}
}

func (p *Particle) SpatialAcceleration(id FrameID) Motion {
	return Motion{Lin: p.Accel}
}

func (p *Particle) FrameJacobian(id FrameID) *mat.Dense {
	j := mat.NewDense(6, 3, nil)
	for i := 0; i < 3; i++ {
		j.Set(i, i, 1)
	}
	return j
}

func (p *Particle) VelocityPartials(id FrameID) (*mat.Dense, *mat.Dense) {
	return mat.NewDense(6, 3, nil), mat.NewDense(6, 3, nil)
}

func (p *Particle) AccelerationPartials(id FrameID) (*mat.Dense, *mat.Dense, *mat.Dense) {
	da := mat.NewDense(6, 3, nil)
	for i := 0; i < 3; i++ {
		da.Set(i, i, 1)
	}
	return mat.NewDense(6, 3, nil), mat.NewDense(6, 3, nil), da
}
