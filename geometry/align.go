package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Kabsch computes the optimal rigid superposition of mobile onto target:
// a proper rotation R and translation t minimizing the RMSD of
// R*mobile[i] + t against target[i]. The two point sets must have the
// same length and contain at least three points.
func Kabsch(mobile, target []Vec3) (Mat3, Vec3, error) {
	if len(mobile) != len(target) {
		return Identity(), Vec3{}, fmt.Errorf("point count mismatch: %d vs %d", len(mobile), len(target))
	}
	if len(mobile) < 3 {
		return Identity(), Vec3{}, fmt.Errorf("need at least 3 points, got %d", len(mobile))
	}

	cm := Centroid(mobile)
	ct := Centroid(target)

	// Cross-covariance of the centered point sets.
	h := mat.NewDense(3, 3, nil)
	for i := range mobile {
		p := mobile[i].Sub(cm)
		q := target[i].Sub(ct)
		h.Set(0, 0, h.At(0, 0)+p.X*q.X)
		h.Set(0, 1, h.At(0, 1)+p.X*q.Y)
		h.Set(0, 2, h.At(0, 2)+p.X*q.Z)
		h.Set(1, 0, h.At(1, 0)+p.Y*q.X)
		h.Set(1, 1, h.At(1, 1)+p.Y*q.Y)
		h.Set(1, 2, h.At(1, 2)+p.Y*q.Z)
		h.Set(2, 0, h.At(2, 0)+p.Z*q.X)
		h.Set(2, 1, h.At(2, 1)+p.Z*q.Y)
		h.Set(2, 2, h.At(2, 2)+p.Z*q.Z)
	}

	var svd mat.SVD
	if ok := svd.Factorize(h, mat.SVDFull); !ok {
		return Identity(), Vec3{}, fmt.Errorf("SVD of covariance matrix failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// R = V * D * U^T, with D correcting an improper rotation.
	var ut mat.Dense
	ut.CloneFrom(u.T())
	d := mat.NewDiagDense(3, []float64{1, 1, 1})
	var vut mat.Dense
	vut.Mul(&v, &ut)
	if mat.Det(&vut) < 0 {
		d.SetDiag(2, -1)
	}
	var r mat.Dense
	r.Mul(&v, d)
	r.Mul(&r, &ut)

	rot := Mat3{
		r.At(0, 0), r.At(0, 1), r.At(0, 2),
		r.At(1, 0), r.At(1, 1), r.At(1, 2),
		r.At(2, 0), r.At(2, 1), r.At(2, 2),
	}
	trans := ct.Sub(rot.MulVec(cm))
	return rot, trans, nil
}

// RMSD returns the root mean square deviation between two point sets
// without superposition.
func RMSD(a, b []Vec3) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("point count mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("empty point sets")
	}
	var sum float64
	for i := range a {
		d := a[i].Sub(b[i])
		sum += d.Dot(d)
	}
	return math.Sqrt(sum / float64(len(a))), nil
}

// SuperposedRMSD returns the minimal RMSD between two point sets after
// optimal rigid superposition.
func SuperposedRMSD(a, b []Vec3) (float64, error) {
	rot, trans, err := Kabsch(a, b)
	if err != nil {
		return 0, err
	}
	moved := make([]Vec3, len(a))
	for i, p := range a {
		moved[i] = rot.MulVec(p).Add(trans)
	}
	return RMSD(moved, b)
}

// PrincipalAxes computes the principal axes of a point cloud: the
// eigenvectors of its covariance matrix, returned as matrix columns
// ordered by descending variance. The frame is made right-handed.
// The centroid of the cloud is returned alongside.
func PrincipalAxes(points []Vec3) (Mat3, Vec3, error) {
	if len(points) < 3 {
		return Identity(), Vec3{}, fmt.Errorf("need at least 3 points, got %d", len(points))
	}

	c := Centroid(points)
	cov := mat.NewSymDense(3, nil)
	for _, p := range points {
		d := p.Sub(c)
		cov.SetSym(0, 0, cov.At(0, 0)+d.X*d.X)
		cov.SetSym(0, 1, cov.At(0, 1)+d.X*d.Y)
		cov.SetSym(0, 2, cov.At(0, 2)+d.X*d.Z)
		cov.SetSym(1, 1, cov.At(1, 1)+d.Y*d.Y)
		cov.SetSym(1, 2, cov.At(1, 2)+d.Y*d.Z)
		cov.SetSym(2, 2, cov.At(2, 2)+d.Z*d.Z)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return Identity(), Vec3{}, fmt.Errorf("eigendecomposition of covariance matrix failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// EigenSym returns ascending eigenvalues; reverse to descending.
	order := []int{2, 1, 0}
	var axes Mat3
	for col, src := range order {
		axes[col] = vecs.At(0, src)
		axes[3+col] = vecs.At(1, src)
		axes[6+col] = vecs.At(2, src)
	}

	// Force a right-handed frame by flipping the last axis if needed.
	if axes.Det() < 0 {
		axes[2] = -axes[2]
		axes[5] = -axes[5]
		axes[8] = -axes[8]
	}
	return axes, c, nil
}
