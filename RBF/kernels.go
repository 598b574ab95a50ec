package RBF

import (
	"fmt"
	"math"
	"strings"
)

type KernelType uint8

const (
	Cubic KernelType = iota
	ThinPlateSpline
	Gaussian
	Multiquadric
)

var (
	kernelNames = map[string]KernelType{
		"cubic":             Cubic,
		"thin_plate_spline": ThinPlateSpline,
		"tps":               ThinPlateSpline,
		"gaussian":          Gaussian,
		"multiquadric":      Multiquadric,
	}
	kernelPrint = []string{"cubic", "thin_plate_spline", "gaussian", "multiquadric"}
)

func NewKernelType(label string) (kt KernelType, err error) {
	var ok bool
	if kt, ok = kernelNames[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown RBF kernel: %q", label)
	}
	return
}

func (kt KernelType) String() string {
	if int(kt) < len(kernelPrint) {
		return kernelPrint[kt]
	}
	return fmt.Sprintf("KernelType(%d)", uint8(kt))
}

// ConditionallyPositive kernels need the linear polynomial tail to give a
// non singular interpolation system
func (kt KernelType) ConditionallyPositive() bool {
	return kt == Cubic || kt == ThinPlateSpline
}

// phi evaluates the kernel at signed offset d = x - xi
func (kt KernelType) phi(d, eps float64) float64 {
	r := math.Abs(d)
	switch kt {
	case ThinPlateSpline:
		if r == 0 {
			return 0
		}
		return r * r * math.Log(r)
	case Gaussian:
		er := eps * r
		return math.Exp(-er * er)
	case Multiquadric:
		er := eps * r
		return math.Sqrt(1 + er*er)
	default:
		return r * r * r
	}
}

// dphi is d/dx of phi(|x - xi|) at signed offset d = x - xi
func (kt KernelType) dphi(d, eps float64) float64 {
	r := math.Abs(d)
	switch kt {
	case ThinPlateSpline:
		if r == 0 {
			return 0
		}
		return d * (2*math.Log(r) + 1)
	case Gaussian:
		er := eps * r
		return -2 * eps * eps * d * math.Exp(-er*er)
	case Multiquadric:
		er := eps * r
		return eps * eps * d / math.Sqrt(1+er*er)
	default:
		return 3 * d * r
	}
}
