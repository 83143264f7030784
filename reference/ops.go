package reference

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/benedoc-inc/graphbind/internal/onnxpb"
)

// kernel executes one compiled node. Its inputs and outputs are captured at
// compile time.
type kernel func()

// compileFunc infers output shapes for n, allocates its outputs, and returns
// the kernel computing them.
type compileFunc func(n *onnxpb.Node, in []*tensor) ([]*tensor, kernel, error)

var ops = map[string]compileFunc{
	"Identity": compileIdentity,
	"Dropout":  compileIdentity,
	"Constant": compileConstant,
	"Add":      binaryOp(func(a, b float32) float32 { return a + b }),
	"Sub":      binaryOp(func(a, b float32) float32 { return a - b }),
	"Mul":      binaryOp(func(a, b float32) float32 { return a * b }),
	"Div":      binaryOp(func(a, b float32) float32 { return a / b }),
	"Relu": unaryOp(func(x float32) float32 {
		if x < 0 {
			return 0
		}
		return x
	}),
	"Sigmoid": unaryOp(func(x float32) float32 {
		return float32(1 / (1 + math.Exp(-float64(x))))
	}),
	"Tanh": unaryOp(func(x float32) float32 {
		return float32(math.Tanh(float64(x)))
	}),
	"Softmax":   compileSoftmax,
	"Flatten":   compileFlatten,
	"Reshape":   compileReshape,
	"MatMul":    compileMatMul,
	"Gemm":      compileGemm,
	"Conv":      compileConv,
	"MaxPool":   compileMaxPool,
	"Transpose": compileTranspose,
}

func need(n *onnxpb.Node, in []*tensor, count int) error {
	if len(in) < count {
		return fmt.Errorf("%s needs %d inputs, got %d", n.OpType, count, len(in))
	}
	for i := 0; i < count; i++ {
		if in[i] == nil {
			return fmt.Errorf("%s input %d is missing", n.OpType, i)
		}
		if in[i].data == nil && numel(in[i].shape) > 0 {
			return fmt.Errorf("%s input %d (%s) is not float32", n.OpType, i, n.Inputs[i])
		}
	}
	return nil
}

func normAxis(axis int64, rank int) (int, error) {
	a := int(axis)
	if a < 0 {
		a += rank
	}
	if a < 0 || a > rank {
		return 0, fmt.Errorf("axis %d out of range for rank %d", axis, rank)
	}
	return a, nil
}

func compileIdentity(n *onnxpb.Node, in []*tensor) ([]*tensor, kernel, error) {
	if err := need(n, in, 1); err != nil {
		return nil, nil, err
	}
	x, y := in[0], newTensor(slices.Clone(in[0].shape))
	return []*tensor{y}, func() { copy(y.data, x.data) }, nil
}

func compileConstant(n *onnxpb.Node, _ []*tensor) ([]*tensor, kernel, error) {
	a := n.Attribute("value")
	if a == nil || a.T == nil {
		return nil, nil, fmt.Errorf("Constant needs a tensor value attribute")
	}
	t, err := constTensor(a.T)
	if err != nil {
		return nil, nil, err
	}
	return []*tensor{t}, func() {}, nil
}

func unaryOp(f func(float32) float32) compileFunc {
	return func(n *onnxpb.Node, in []*tensor) ([]*tensor, kernel, error) {
		if err := need(n, in, 1); err != nil {
			return nil, nil, err
		}
		x, y := in[0], newTensor(slices.Clone(in[0].shape))
		return []*tensor{y}, func() {
			for i, v := range x.data {
				y.data[i] = f(v)
			}
		}, nil
	}
}

// broadcastShape applies multidirectional (numpy) broadcasting.
func broadcastShape(a, b []int) ([]int, error) {
	rank := max(len(a), len(b))
	out := make([]int, rank)
	for i := 0; i < rank; i++ {
		da, db := 1, 1
		if j := i - (rank - len(a)); j >= 0 {
			da = a[j]
		}
		if j := i - (rank - len(b)); j >= 0 {
			db = b[j]
		}
		switch {
		case da == db:
			out[i] = da
		case da == 1:
			out[i] = db
		case db == 1:
			out[i] = da
		default:
			return nil, fmt.Errorf("shapes %v and %v cannot be broadcast", a, b)
		}
	}
	return out, nil
}

// broadcastStrides returns, for each dim of out, the stride into a tensor of
// shape, or 0 where shape is broadcast along that dim.
func broadcastStrides(shape, out []int) []int {
	strides := make([]int, len(out))
	stride := 1
	for i := len(out) - 1; i >= 0; i-- {
		j := i - (len(out) - len(shape))
		if j < 0 {
			continue
		}
		if shape[j] != 1 {
			strides[i] = stride
		}
		stride *= shape[j]
	}
	return strides
}

// broadcastTo fills dst (of shape out) from src.
func broadcastTo(dst []float32, out []int, src *tensor) {
	if len(src.data) == len(dst) {
		copy(dst, src.data)
		return
	}
	strides := broadcastStrides(src.shape, out)
	for i := range dst {
		rem, off := i, 0
		for d := len(out) - 1; d >= 0; d-- {
			off += (rem % out[d]) * strides[d]
			rem /= out[d]
		}
		dst[i] = src.data[off]
	}
}

func binaryOp(f func(a, b float32) float32) compileFunc {
	return func(n *onnxpb.Node, in []*tensor) ([]*tensor, kernel, error) {
		if err := need(n, in, 2); err != nil {
			return nil, nil, err
		}
		a, b := in[0], in[1]
		shape, err := broadcastShape(a.shape, b.shape)
		if err != nil {
			return nil, nil, err
		}
		y := newTensor(shape)
		if len(a.data) == len(y.data) && len(b.data) == len(y.data) {
			return []*tensor{y}, func() {
				for i := range y.data {
					y.data[i] = f(a.data[i], b.data[i])
				}
			}, nil
		}

		sa := broadcastStrides(a.shape, shape)
		sb := broadcastStrides(b.shape, shape)
		return []*tensor{y}, func() {
			for i := range y.data {
				rem, oa, ob := i, 0, 0
				for d := len(shape) - 1; d >= 0; d-- {
					c := rem % shape[d]
					rem /= shape[d]
					oa += c * sa[d]
					ob += c * sb[d]
				}
				y.data[i] = f(a.data[oa], b.data[ob])
			}
		}, nil
	}
}

func compileSoftmax(n *onnxpb.Node, in []*tensor) ([]*tensor, kernel, error) {
	if err := need(n, in, 1); err != nil {
		return nil, nil, err
	}
	x := in[0]
	rank := len(x.shape)
	axis, err := normAxis(n.AttrInt("axis", -1), rank)
	if err != nil || axis == rank {
		return nil, nil, fmt.Errorf("Softmax: axis %d out of range for rank %d", n.AttrInt("axis", -1), rank)
	}
	outer := numel(x.shape[:axis])
	dim := x.shape[axis]
	inner := numel(x.shape[axis+1:])

	y := newTensor(slices.Clone(x.shape))
	return []*tensor{y}, func() {
		for o := 0; o < outer; o++ {
			for i := 0; i < inner; i++ {
				base := o*dim*inner + i
				maxv := float32(math.Inf(-1))
				for d := 0; d < dim; d++ {
					maxv = max(maxv, x.data[base+d*inner])
				}
				var sum float64
				for d := 0; d < dim; d++ {
					e := math.Exp(float64(x.data[base+d*inner] - maxv))
					y.data[base+d*inner] = float32(e)
					sum += e
				}
				for d := 0; d < dim; d++ {
					y.data[base+d*inner] = float32(float64(y.data[base+d*inner]) / sum)
				}
			}
		}
	}, nil
}

func compileFlatten(n *onnxpb.Node, in []*tensor) ([]*tensor, kernel, error) {
	if err := need(n, in, 1); err != nil {
		return nil, nil, err
	}
	x := in[0]
	axis, err := normAxis(n.AttrInt("axis", 1), len(x.shape))
	if err != nil {
		return nil, nil, fmt.Errorf("Flatten: %w", err)
	}
	y := newTensor([]int{numel(x.shape[:axis]), numel(x.shape[axis:])})
	return []*tensor{y}, func() { copy(y.data, x.data) }, nil
}

func compileReshape(n *onnxpb.Node, in []*tensor) ([]*tensor, kernel, error) {
	if len(in) < 2 || in[0] == nil || in[1] == nil {
		return nil, nil, fmt.Errorf("Reshape needs data and shape inputs")
	}
	x, spec := in[0], in[1].ints
	if spec == nil {
		return nil, nil, fmt.Errorf("Reshape: shape input %q must be an int64 constant", n.Inputs[1])
	}
	allowZero := n.AttrInt("allowzero", 0) != 0

	shape := make([]int, len(spec))
	infer := -1
	known := 1
	for i, d := range spec {
		switch {
		case d == -1:
			if infer >= 0 {
				return nil, nil, fmt.Errorf("Reshape: more than one -1 in shape %v", spec)
			}
			infer = i
			continue
		case d == 0 && !allowZero:
			if i >= len(x.shape) {
				return nil, nil, fmt.Errorf("Reshape: zero at %d copies a dim the input does not have", i)
			}
			shape[i] = x.shape[i]
		case d < 0:
			return nil, nil, fmt.Errorf("Reshape: invalid dim %d", d)
		default:
			shape[i] = int(d)
		}
		known *= shape[i]
	}
	total := numel(x.shape)
	if infer >= 0 {
		if known == 0 || total%known != 0 {
			return nil, nil, fmt.Errorf("Reshape: cannot infer dim for %v from %v", spec, x.shape)
		}
		shape[infer] = total / known
	} else if known != total {
		return nil, nil, fmt.Errorf("Reshape: %v has %d elements, input %v has %d", shape, known, x.shape, total)
	}

	y := newTensor(shape)
	return []*tensor{y}, func() { copy(y.data, x.data) }, nil
}

func general(rows, cols int, data []float32) blas32.General {
	return blas32.General{Rows: rows, Cols: cols, Stride: cols, Data: data}
}

// compileMatMul supports A of rank >= 2 against a 2-D B; leading dims of A
// are folded into rows.
func compileMatMul(n *onnxpb.Node, in []*tensor) ([]*tensor, kernel, error) {
	if err := need(n, in, 2); err != nil {
		return nil, nil, err
	}
	a, b := in[0], in[1]
	if len(a.shape) < 2 || len(b.shape) != 2 {
		return nil, nil, fmt.Errorf("MatMul: unsupported shapes %v x %v", a.shape, b.shape)
	}
	k := a.shape[len(a.shape)-1]
	if b.shape[0] != k {
		return nil, nil, fmt.Errorf("MatMul: inner dims differ: %v x %v", a.shape, b.shape)
	}
	cols := b.shape[1]
	rows := numel(a.shape) / k

	shape := append(slices.Clone(a.shape[:len(a.shape)-1]), cols)
	y := newTensor(shape)
	return []*tensor{y}, func() {
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
			general(rows, k, a.data), general(k, cols, b.data),
			0, general(rows, cols, y.data))
	}, nil
}

func compileGemm(n *onnxpb.Node, in []*tensor) ([]*tensor, kernel, error) {
	if err := need(n, in, 2); err != nil {
		return nil, nil, err
	}
	a, b := in[0], in[1]
	if len(a.shape) != 2 || len(b.shape) != 2 {
		return nil, nil, fmt.Errorf("Gemm: A and B must be 2-D, got %v and %v", a.shape, b.shape)
	}
	alpha := n.AttrFloat("alpha", 1)
	beta := n.AttrFloat("beta", 1)

	tA, tB := blas.NoTrans, blas.NoTrans
	m, k := a.shape[0], a.shape[1]
	if n.AttrInt("transA", 0) != 0 {
		tA = blas.Trans
		m, k = k, m
	}
	kb, cols := b.shape[0], b.shape[1]
	if n.AttrInt("transB", 0) != 0 {
		tB = blas.Trans
		kb, cols = cols, kb
	}
	if k != kb {
		return nil, nil, fmt.Errorf("Gemm: inner dims differ: %v x %v", a.shape, b.shape)
	}

	var c *tensor
	if len(in) > 2 && in[2] != nil {
		c = in[2]
		if out, err := broadcastShape(c.shape, []int{m, cols}); err != nil || out[0] != m || out[1] != cols {
			return nil, nil, fmt.Errorf("Gemm: C %v cannot be broadcast to [%d %d]", c.shape, m, cols)
		}
	}

	y := newTensor([]int{m, cols})
	outShape := []int{m, cols}
	return []*tensor{y}, func() {
		bt := float32(0)
		if c != nil {
			broadcastTo(y.data, outShape, c)
			bt = beta
		}
		blas32.Gemm(tA, tB, alpha,
			general(a.shape[0], a.shape[1], a.data), general(b.shape[0], b.shape[1], b.data),
			bt, general(m, cols, y.data))
	}, nil
}

// window holds the resolved 2-D sliding window parameters of Conv and
// MaxPool.
type window struct {
	kh, kw     int
	sh, sw     int
	dh, dw     int
	padT, padL int
	oh, ow     int
}

func newWindow(n *onnxpb.Node, h, w, kh, kw int) (window, error) {
	win := window{kh: kh, kw: kw, sh: 1, sw: 1, dh: 1, dw: 1}
	if s := n.AttrInts("strides"); len(s) == 2 {
		win.sh, win.sw = int(s[0]), int(s[1])
	}
	if d := n.AttrInts("dilations"); len(d) == 2 {
		win.dh, win.dw = int(d[0]), int(d[1])
	}
	effH := (kh-1)*win.dh + 1
	effW := (kw-1)*win.dw + 1

	var padB, padR int
	autoPad := "NOTSET"
	if a := n.Attribute("auto_pad"); a != nil && len(a.S) > 0 {
		autoPad = string(a.S)
	}
	switch autoPad {
	case "NOTSET":
		if p := n.AttrInts("pads"); len(p) == 4 {
			win.padT, win.padL, padB, padR = int(p[0]), int(p[1]), int(p[2]), int(p[3])
		}
	case "VALID":
	case "SAME_UPPER", "SAME_LOWER":
		ph := max(0, (ceilDiv(h, win.sh)-1)*win.sh+effH-h)
		pw := max(0, (ceilDiv(w, win.sw)-1)*win.sw+effW-w)
		win.padT, padB = ph/2, ph-ph/2
		win.padL, padR = pw/2, pw-pw/2
		if autoPad == "SAME_LOWER" {
			win.padT, padB = padB, win.padT
			win.padL, padR = padR, win.padL
		}
	default:
		return win, fmt.Errorf("%s: unsupported auto_pad %q", n.OpType, autoPad)
	}

	num := h + win.padT + padB - effH
	den := w + win.padL + padR - effW
	if n.AttrInt("ceil_mode", 0) != 0 {
		win.oh = ceilDiv(num, win.sh) + 1
		win.ow = ceilDiv(den, win.sw) + 1
	} else {
		win.oh = num/win.sh + 1
		win.ow = den/win.sw + 1
	}
	if num < 0 || den < 0 || win.oh <= 0 || win.ow <= 0 {
		return win, fmt.Errorf("%s: kernel %dx%d does not fit input %dx%d", n.OpType, kh, kw, h, w)
	}
	return win, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// compileConv lowers a 2-D convolution (group 1) to im2col plus Gemm.
func compileConv(n *onnxpb.Node, in []*tensor) ([]*tensor, kernel, error) {
	if err := need(n, in, 2); err != nil {
		return nil, nil, err
	}
	x, w := in[0], in[1]
	if len(x.shape) != 4 || len(w.shape) != 4 {
		return nil, nil, fmt.Errorf("Conv: only 2-D convolution is supported, got X %v W %v", x.shape, w.shape)
	}
	if g := n.AttrInt("group", 1); g != 1 {
		return nil, nil, fmt.Errorf("Conv: group %d is not supported", g)
	}
	batch, ch, h, wd := x.shape[0], x.shape[1], x.shape[2], x.shape[3]
	m, kh, kw := w.shape[0], w.shape[2], w.shape[3]
	if w.shape[1] != ch {
		return nil, nil, fmt.Errorf("Conv: W %v does not match %d input channels", w.shape, ch)
	}
	var bias *tensor
	if len(in) > 2 && in[2] != nil {
		bias = in[2]
		if numel(bias.shape) != m {
			return nil, nil, fmt.Errorf("Conv: bias %v does not match %d output channels", bias.shape, m)
		}
	}

	win, err := newWindow(n, h, wd, kh, kw)
	if err != nil {
		return nil, nil, err
	}

	patch := ch * kh * kw
	spatial := win.oh * win.ow
	col := make([]float32, patch*spatial)
	y := newTensor([]int{batch, m, win.oh, win.ow})

	return []*tensor{y}, func() {
		for b := 0; b < batch; b++ {
			img := x.data[b*ch*h*wd : (b+1)*ch*h*wd]
			for c := 0; c < ch; c++ {
				for i := 0; i < kh; i++ {
					for j := 0; j < kw; j++ {
						row := col[((c*kh+i)*kw+j)*spatial:]
						for oy := 0; oy < win.oh; oy++ {
							iy := oy*win.sh - win.padT + i*win.dh
							for ox := 0; ox < win.ow; ox++ {
								ix := ox*win.sw - win.padL + j*win.dw
								v := float32(0)
								if iy >= 0 && iy < h && ix >= 0 && ix < wd {
									v = img[(c*h+iy)*wd+ix]
								}
								row[oy*win.ow+ox] = v
							}
						}
					}
				}
			}

			out := y.data[b*m*spatial : (b+1)*m*spatial]
			blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
				general(m, patch, w.data), general(patch, spatial, col),
				0, general(m, spatial, out))
			if bias != nil {
				for oc := 0; oc < m; oc++ {
					bv := bias.data[oc]
					for s := range out[oc*spatial : (oc+1)*spatial] {
						out[oc*spatial+s] += bv
					}
				}
			}
		}
	}, nil
}

func compileMaxPool(n *onnxpb.Node, in []*tensor) ([]*tensor, kernel, error) {
	if err := need(n, in, 1); err != nil {
		return nil, nil, err
	}
	if len(n.Outputs) > 1 && n.Outputs[1] != "" {
		return nil, nil, fmt.Errorf("MaxPool: Indices output is not supported")
	}
	x := in[0]
	if len(x.shape) != 4 {
		return nil, nil, fmt.Errorf("MaxPool: only 2-D pooling is supported, got X %v", x.shape)
	}
	k := n.AttrInts("kernel_shape")
	if len(k) != 2 {
		return nil, nil, fmt.Errorf("MaxPool: kernel_shape must have 2 entries, got %v", k)
	}
	planes, h, wd := x.shape[0]*x.shape[1], x.shape[2], x.shape[3]
	win, err := newWindow(n, h, wd, int(k[0]), int(k[1]))
	if err != nil {
		return nil, nil, err
	}

	y := newTensor([]int{x.shape[0], x.shape[1], win.oh, win.ow})
	return []*tensor{y}, func() {
		for p := 0; p < planes; p++ {
			img := x.data[p*h*wd : (p+1)*h*wd]
			out := y.data[p*win.oh*win.ow:]
			for oy := 0; oy < win.oh; oy++ {
				for ox := 0; ox < win.ow; ox++ {
					best := float32(math.Inf(-1))
					for i := 0; i < win.kh; i++ {
						iy := oy*win.sh - win.padT + i*win.dh
						if iy < 0 || iy >= h {
							continue
						}
						for j := 0; j < win.kw; j++ {
							ix := ox*win.sw - win.padL + j*win.dw
							if ix < 0 || ix >= wd {
								continue
							}
							best = max(best, img[iy*wd+ix])
						}
					}
					out[oy*win.ow+ox] = best
				}
			}
		}
	}, nil
}

func compileTranspose(n *onnxpb.Node, in []*tensor) ([]*tensor, kernel, error) {
	if err := need(n, in, 1); err != nil {
		return nil, nil, err
	}
	x := in[0]
	rank := len(x.shape)
	perm := make([]int, rank)
	if p := n.AttrInts("perm"); p != nil {
		if len(p) != rank {
			return nil, nil, fmt.Errorf("Transpose: perm %v does not match rank %d", p, rank)
		}
		seen := make([]bool, rank)
		for i, v := range p {
			if v < 0 || int(v) >= rank || seen[v] {
				return nil, nil, fmt.Errorf("Transpose: invalid perm %v", p)
			}
			seen[v] = true
			perm[i] = int(v)
		}
	} else {
		for i := range perm {
			perm[i] = rank - 1 - i
		}
	}

	inStrides := make([]int, rank)
	stride := 1
	for i := rank - 1; i >= 0; i-- {
		inStrides[i] = stride
		stride *= x.shape[i]
	}
	shape := make([]int, rank)
	strides := make([]int, rank)
	for i, p := range perm {
		shape[i] = x.shape[p]
		strides[i] = inStrides[p]
	}

	y := newTensor(shape)
	return []*tensor{y}, func() {
		for i := range y.data {
			rem, off := i, 0
			for d := rank - 1; d >= 0; d-- {
				off += (rem % shape[d]) * strides[d]
				rem /= shape[d]
			}
			y.data[i] = x.data[off]
		}
	}, nil
}
