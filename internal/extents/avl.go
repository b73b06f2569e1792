package extents

func (x *Index) height(h Handle) int8 {
	if h == NoHandle {
		return 0
	}
	return x.nodes[h].height
}

func (x *Index) update(h Handle) {
	l, r := x.height(x.nodes[h].left), x.height(x.nodes[h].right)
	if l > r {
		x.nodes[h].height = l + 1
	} else {
		x.nodes[h].height = r + 1
	}
}

func (x *Index) balance(h Handle) int8 {
	return x.height(x.nodes[h].left) - x.height(x.nodes[h].right)
}

func (x *Index) rotateRight(h Handle) Handle {
	l := x.nodes[h].left
	x.nodes[h].left = x.nodes[l].right
	x.nodes[l].right = h
	x.update(h)
	x.update(l)
	return l
}

func (x *Index) rotateLeft(h Handle) Handle {
	r := x.nodes[h].right
	x.nodes[h].right = x.nodes[r].left
	x.nodes[r].left = h
	x.update(h)
	x.update(r)
	return r
}

func (x *Index) rebalance(h Handle) Handle {
	x.update(h)
	switch b := x.balance(h); {
	case b > 1:
		if x.balance(x.nodes[h].left) < 0 {
			x.nodes[h].left = x.rotateLeft(x.nodes[h].left)
		}
		return x.rotateRight(h)
	case b < -1:
		if x.balance(x.nodes[h].right) > 0 {
			x.nodes[h].right = x.rotateRight(x.nodes[h].right)
		}
		return x.rotateLeft(h)
	}
	return h
}
