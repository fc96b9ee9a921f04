package kinematics

import "gonum.org/v1/gonum/mat"

// FrameID identifies an operational frame of the rigid-body model.
type FrameID int

// Provider is the read-only query interface a rigid-body kinematics engine
// must implement for contact models. All quantities refer to a configuration
// and velocity that the caller has already installed (typically the parent
// differential dynamics model updates the kinematics once per evaluation and
// every contact queries the same snapshot).
//
// Spatial quantities are expressed in the local frame of the joint supporting
// the frame; the frame's fixed offset from that joint is available through
// LocalPlacement so callers can transform with its action matrix.
type Provider interface {
	// NV is the dimension of the generalized velocity.
	NV() int

	// HasFrame reports whether id is a valid frame of the model.
	HasFrame(id FrameID) bool

	// Placement returns the frame pose in the world frame.
	Placement(id FrameID) SE3

	// LocalPlacement returns the fixed pose of the frame in its supporting
	// joint frame (jMf). It does not depend on the configuration.
	LocalPlacement(id FrameID) SE3

	// SpatialVelocity returns the frame spatial velocity, local convention.
	SpatialVelocity(id FrameID) Motion

	// SpatialAcceleration returns the frame spatial acceleration under zero
	// generalized acceleration (the velocity-product term), local convention.
	SpatialAcceleration(id FrameID) Motion

	// FrameJacobian returns the 6 x nv local frame Jacobian.
	FrameJacobian(id FrameID) *mat.Dense

	// VelocityPartials returns the partials of the supporting joint spatial
	// velocity with respect to generalized position and velocity, 6 x nv each,
	// expressed in the joint frame.
	VelocityPartials(id FrameID) (dq, dv *mat.Dense)

	// AccelerationPartials returns the partials of the supporting joint
	// spatial acceleration with respect to generalized position, velocity and
	// acceleration, 6 x nv each, expressed in the joint frame.
	AccelerationPartials(id FrameID) (dq, dv, da *mat.Dense)
}
