package game

// worldSpaceCenter is the center of the entity's box, or its origin when it
// has no body.
func worldSpaceCenter(w *World, id EntityID) Vec3 {
	tr := w.Transform(id)
	if tr == nil {
		return Vec3{}
	}
	if body := w.Body(id); body != nil {
		return body.Center(tr.Pos)
	}
	return tr.Pos
}

// BodyTarget is the point a shooter at from should aim at.
func BodyTarget(w *World, id EntityID, from Vec3) Vec3 {
	return worldSpaceCenter(w, id)
}

// SmoothedVelocity averages the entity's motion over SmoothWindowS using its
// history, falling back to the instantaneous velocity.
func SmoothedVelocity(w *World, id EntityID, now float64) Vec3 {
	tr := w.Transform(id)
	if tr == nil {
		return Vec3{}
	}
	hist := w.HistoryComponent(id)
	if hist == nil || hist.History == nil {
		return tr.Vel
	}
	past, ok := hist.History.GetAt(now - SmoothWindowS)
	if !ok {
		return tr.Vel
	}
	span := now - past.T
	if span <= TimeEpsilon {
		return tr.Vel
	}
	return tr.Pos.Sub(past.Pos).Scale(1.0 / span)
}

// visibleSlack lets a point lying on a surface see past that surface.
const visibleSlack = 1.0

// Visible reports whether nothing solid blocks the line from eye to pos.
func (r *Room) Visible(eye, pos Vec3, ignore EntityID) bool {
	tr := r.TraceLine(eye, pos, ignore)
	return !tr.Hit() || tr.EndPos.DistTo(pos) < visibleSlack
}
