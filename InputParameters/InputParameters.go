package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type BratuParameters struct {
	Title               string  `yaml:"Title"`
	NTeeth              int     `yaml:"NTeeth"`
	NPointsPerTooth     int     `yaml:"NPointsPerTooth"`
	GapOverToothRatio   int     `yaml:"GapOverToothRatio"`
	Lambda              float64 `yaml:"Lambda"`
	Dt                  float64 `yaml:"Dt"`        // Micro Euler step
	DtPI                float64 `yaml:"DtPI"`      // Projective step
	K                   int     `yaml:"K"`         // Micro steps per projective cycle
	TPatch              float64 `yaml:"TPatch"`    // Horizon between slope re-estimation
	FinalTime           float64 `yaml:"FinalTime"` // Evolution experiment horizon
	TPsi                float64 `yaml:"TPsi"`      // Horizon of the coarse time-stepper used by the solvers
	RBFKernel           string  `yaml:"RBFKernel"`
	RBFSolver           string  `yaml:"RBFSolver"`
	RBFEpsilon          float64 `yaml:"RBFEpsilon"`
	ReuseFactorization  bool    `yaml:"ReuseFactorization"`
	NewtonTolerance     float64 `yaml:"NewtonTolerance"` // Max norm of the residual
	NewtonMaxIterations int     `yaml:"NewtonMaxIterations"`
	KrylovTolerance     float64 `yaml:"KrylovTolerance"`
	Rdiff               float64 `yaml:"Rdiff"` // Finite difference step for Jacobian-vector products
	ArnoldiEigenvalues  int     `yaml:"ArnoldiEigenvalues"`
	ArnoldiKrylovSize   int     `yaml:"ArnoldiKrylovSize"`
	DenseJacobian       bool    `yaml:"DenseJacobian"` // Also build the full Jacobian and its QR eigenvalues
}

// Defaults are the constants of the reference experiments
func Defaults() *BratuParameters {
	dt := 1.e-6
	return &BratuParameters{
		Title:               "Bratu gap-tooth projective integration",
		NTeeth:              21,
		NPointsPerTooth:     15,
		GapOverToothRatio:   1,
		Lambda:              1.0,
		Dt:                  dt,
		DtPI:                4.e-6,
		K:                   2,
		TPatch:              100 * dt,
		FinalTime:           0.5,
		TPsi:                1.e-2,
		RBFKernel:           "cubic",
		RBFSolver:           "lu_direct",
		RBFEpsilon:          1,
		NewtonTolerance:     1.e-14,
		NewtonMaxIterations: 50,
		KrylovTolerance:     1.e-6,
		Rdiff:               1.e-8,
		ArnoldiEigenvalues:  10,
		ArnoldiKrylovSize:   60,
		DenseJacobian:       true,
	}
}

// Parse overlays the YAML onto the receiver, keys absent from data keep their values
func (ip *BratuParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *BratuParameters) Validate() (err error) {
	switch {
	case ip.NTeeth < 1:
		err = fmt.Errorf("NTeeth must be at least 1, have %d", ip.NTeeth)
	case ip.NPointsPerTooth < 3:
		err = fmt.Errorf("NPointsPerTooth must be at least 3, have %d", ip.NPointsPerTooth)
	case ip.GapOverToothRatio < 1:
		err = fmt.Errorf("GapOverToothRatio must be at least 1, have %d", ip.GapOverToothRatio)
	case ip.Rdiff <= 0:
		err = fmt.Errorf("Rdiff must be positive, have %v", ip.Rdiff)
	case ip.ArnoldiEigenvalues < 1 || ip.ArnoldiKrylovSize < ip.ArnoldiEigenvalues:
		err = fmt.Errorf("need 1 <= ArnoldiEigenvalues (%d) <= ArnoldiKrylovSize (%d)",
			ip.ArnoldiEigenvalues, ip.ArnoldiKrylovSize)
	}
	return
}

func (ip *BratuParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d, %d, %d]\t\t= Teeth, Points per tooth, Gap/Tooth ratio\n",
		ip.NTeeth, ip.NPointsPerTooth, ip.GapOverToothRatio)
	fmt.Printf("%8.5f\t\t= Lambda\n", ip.Lambda)
	fmt.Printf("%8.3e\t\t= dt\n", ip.Dt)
	fmt.Printf("%8.3e\t\t= Dt (projective)\n", ip.DtPI)
	fmt.Printf("[%d]\t\t\t= K\n", ip.K)
	fmt.Printf("%8.3e\t\t= T_patch\n", ip.TPatch)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("%8.3e\t\t= T_psi\n", ip.TPsi)
	fmt.Printf("[%s, %s]\t= RBF Kernel, Solver (reuse factorization: %v)\n",
		ip.RBFKernel, ip.RBFSolver, ip.ReuseFactorization)
}
