package generator

// NURandGenerator draws the non-uniform random values of TPC-C:
//
//	((uniform(0, A) | (uniform(x, y) + C)) mod (y - x + 1)) + x
//
// C is drawn once per generator, uniformly in [0, A].
type NURandGenerator struct {
	*IntegerGeneratorBase
	a int64
	c int64
	x int64
	y int64
}

func NewNURandGenerator(a, x, y int64) *NURandGenerator {
	return NewNURandGeneratorWithC(a, RandomInt(0, a), x, y)
}

func NewNURandGeneratorWithC(a, c, x, y int64) *NURandGenerator {
	return &NURandGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(x - 1),
		a:                    a,
		c:                    c,
		x:                    x,
		y:                    y,
	}
}

func (self *NURandGenerator) NextInt() int64 {
	ret := (((RandomInt(0, self.a) | (RandomInt(self.x, self.y) + self.c)) %
		(self.y - self.x + 1)) + self.x)
	self.SetLastInt(ret)
	return ret
}

func (self *NURandGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

// Mean is not closed form for NURand, the midpoint of the range is returned.
func (self *NURandGenerator) Mean() float64 {
	return float64(self.x+self.y) / 2.0
}

// C returns the run-time constant of this generator.
func (self *NURandGenerator) C() int64 {
	return self.c
}

const (
	LastNameA     = 255
	LastNameMin   = 0
	LastNameMax   = 999
	CustomerIDA   = 1023
	CustomerIDMin = 1
	CustomerIDMax = 3000
	ItemIDA       = 8191
	ItemIDMin     = 1
	ItemIDMax     = 100000
	InvalidItemID = ItemIDMax + 1
)

// Process wide NURand instances; their C values stay fixed for the process
// lifetime.
var (
	LastNameNURand   = NewNURandGenerator(LastNameA, LastNameMin, LastNameMax)
	CustomerIDNURand = NewNURandGenerator(CustomerIDA, CustomerIDMin, CustomerIDMax)
	ItemIDNURand     = NewNURandGenerator(ItemIDA, ItemIDMin, ItemIDMax)
)
