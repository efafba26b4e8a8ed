package fem

// Coefficient is a scalar field evaluated at physical points
type Coefficient interface {
	Eval(x [2]float64) float64
}

// ConstantCoefficient is the same value everywhere
type ConstantCoefficient float64

func (c ConstantCoefficient) Eval([2]float64) float64 { return float64(c) }

// FunctionCoefficient wraps a plain function of position
type FunctionCoefficient func(x [2]float64) float64

func (f FunctionCoefficient) Eval(x [2]float64) float64 { return f(x) }

// ProductCoefficient scales a coefficient by a constant
type ProductCoefficient struct {
	Scale float64
	Q     Coefficient
}

func (p ProductCoefficient) Eval(x [2]float64) float64 { return p.Scale * p.Q.Eval(x) }

func evalOrOne(q Coefficient, x [2]float64) float64 {
	if q == nil {
		return 1
	}
	return q.Eval(x)
}
