package signature

// Replay drives recorded stroke traces through the surface's pointer
// state machine, exactly as live input would. Each trace becomes one
// down/move/up sequence; a single-point trace is a tap.
func Replay(s *Surface, strokes [][]Point) {
	const pointerID = 1
	for _, stroke := range strokes {
		if len(stroke) == 0 {
			continue
		}
		s.PointerDown(pointerID, stroke[0])
		for _, p := range stroke[1:] {
			s.PointerMove(pointerID, p)
		}
		s.PointerUp(pointerID)
	}
}
