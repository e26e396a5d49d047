package tracker

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DetectBox represents a 1x4 measurement (center x, center y, aspect ratio,
// height)
type DetectBox []float32

// StateMean represents a 1x8 state vector, the measurement followed by its
// velocities
type StateMean []float32

// StateCov represents an 8x8 state covariance matrix
type StateCov struct {
	*mat.Dense
}

// StateHMean represents a 1x4 state projected into measurement space
type StateHMean []float32

// StateHCov represents a 4x4 covariance in measurement space
type StateHCov struct {
	*mat.SymDense
}

// KalmanFilter is a constant velocity Kalman filter over the Xyah box
// representation used by the trackers
type KalmanFilter struct {
	stdWeightPosition float32
	stdWeightVelocity float32
	motionMat         *mat.Dense
	updateMat         *mat.Dense
}

// NewKalmanFilter initializes and returns a new KalmanFilter
func NewKalmanFilter(stdWeightPosition, stdWeightVelocity float32) *KalmanFilter {

	const ndim = 4
	dt := 1.0

	// identity with dt on the position/velocity coupling terms
	motionMat := mat.NewDense(2*ndim, 2*ndim, nil)

	for i := 0; i < 2*ndim; i++ {
		motionMat.Set(i, i, 1.0)
	}

	for i := 0; i < ndim; i++ {
		motionMat.Set(i, ndim+i, dt)
	}

	// 4x8 selecting the measured part of the state
	updateMat := mat.NewDense(ndim, 2*ndim, nil)

	for i := 0; i < ndim; i++ {
		updateMat.Set(i, i, 1.0)
	}

	return &KalmanFilter{
		stdWeightPosition: stdWeightPosition,
		stdWeightVelocity: stdWeightVelocity,
		motionMat:         motionMat,
		updateMat:         updateMat,
	}
}

// stateStd returns the standard deviations of the 8 state variables scaled
// by the box height.  Aspect ratio terms are fixed.
func (kf *KalmanFilter) stateStd(height, posScale, velScale float32) StateMean {
	return StateMean{
		posScale * kf.stdWeightPosition * height, // x position
		posScale * kf.stdWeightPosition * height, // y position
		1e-2,                                     // aspect ratio
		posScale * kf.stdWeightPosition * height, // height
		velScale * kf.stdWeightVelocity * height, // x velocity
		velScale * kf.stdWeightVelocity * height, // y velocity
		1e-5,                                     // aspect ratio velocity
		velScale * kf.stdWeightVelocity * height, // height velocity
	}
}

// variances squares each standard deviation
func variances(std []float32) []float64 {
	out := make([]float64, len(std))

	for i, v := range std {
		out[i] = float64(v * v)
	}

	return out
}

// meanVec converts a float32 state vector to a gonum vector
func meanVec(mean []float32) *mat.VecDense {
	data := make([]float64, len(mean))

	for i, v := range mean {
		data[i] = float64(v)
	}

	return mat.NewVecDense(len(data), data)
}

// Initiate sets the state from the first measurement with zero velocity
func (kf *KalmanFilter) Initiate(mean StateMean, covariance *StateCov,
	measurement DetectBox) {

	copy(mean[:4], measurement[:4])

	for i := 4; i < 8; i++ {
		mean[i] = 0.0
	}

	for i, v := range variances(kf.stateStd(measurement[3], 2, 10)) {
		covariance.Set(i, i, v)
	}
}

// Predict runs the motion model forward one frame
func (kf *KalmanFilter) Predict(mean StateMean, covariance *StateCov) {

	motionCov := mat.NewDiagDense(8, variances(kf.stateStd(mean[3], 1, 1)))

	next := mat.NewVecDense(8, nil)
	next.MulVec(kf.motionMat, meanVec(mean))

	for i := 0; i < 8; i++ {
		mean[i] = float32(next.AtVec(i))
	}

	cov := covariance.Dense
	cov.Mul(kf.motionMat, cov)
	cov.Mul(cov, kf.motionMat.T())
	cov.Add(cov, motionCov)
}

// Update corrects the state with a new measurement
func (kf *KalmanFilter) Update(mean StateMean, covariance *StateCov,
	measurement DetectBox) error {

	projectedMean, projectedCov := kf.project(mean, covariance)

	var chol mat.Cholesky

	if ok := chol.Factorize(projectedCov); !ok {
		return errors.New("failed to factorize projected covariance")
	}

	b := mat.NewDense(8, 4, nil)
	b.Mul(covariance.Dense, kf.updateMat.T())

	var kalmanGain mat.Dense

	if err := chol.SolveTo(&kalmanGain, b.T()); err != nil {
		return fmt.Errorf("failed to compute kalman gain: %w", err)
	}

	innovation := make([]float64, 4)

	for i := 0; i < 4; i++ {
		innovation[i] = float64(measurement[i] - projectedMean[i])
	}

	correction := mat.NewVecDense(8, nil)
	correction.MulVec(kalmanGain.T(), mat.NewVecDense(4, innovation))

	for i := 0; i < 8; i++ {
		mean[i] += float32(correction.AtVec(i))
	}

	gainCov := mat.NewDense(8, 4, nil)
	gainCov.Mul(kalmanGain.T(), projectedCov)

	reduction := mat.NewDense(8, 8, nil)
	reduction.Mul(gainCov, &kalmanGain)

	newCov := mat.NewDense(8, 8, nil)
	newCov.Sub(covariance.Dense, reduction)

	covariance.Dense = newCov

	return nil
}

// project maps the state mean and covariance into measurement space
func (kf *KalmanFilter) project(mean StateMean,
	covariance *StateCov) (StateHMean, *StateHCov) {

	std := DetectBox{
		kf.stdWeightPosition * mean[3],
		kf.stdWeightPosition * mean[3],
		1e-1,
		kf.stdWeightPosition * mean[3],
	}

	innovationCov := mat.NewSymDense(4, nil)

	for i, v := range variances(std) {
		innovationCov.SetSym(i, i, v)
	}

	projected := mat.NewVecDense(4, nil)
	projected.MulVec(kf.updateMat, meanVec(mean))

	tmp := mat.NewDense(4, 8, nil)
	tmp.Mul(kf.updateMat, covariance.Dense)

	full := mat.NewDense(4, 4, nil)
	full.Mul(tmp, kf.updateMat.T())

	projectedCov := mat.NewSymDense(4, nil)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			projectedCov.SetSym(i, j, full.At(i, j))
		}
	}

	projectedCov.AddSym(projectedCov, innovationCov)

	projectedMean := make(StateHMean, 4)

	for i := 0; i < 4; i++ {
		projectedMean[i] = float32(projected.AtVec(i))
	}

	return projectedMean, &StateHCov{projectedCov}
}
