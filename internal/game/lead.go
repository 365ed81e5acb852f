package game

import "math"

// ComputeLeadingPosition returns where a shot fired now at shotSpeed meets a
// target moving with targetVel. Only the horizontal part of the target's
// velocity is led. Without a forward-in-time solution the target position is
// returned unchanged.
func ComputeLeadingPosition(shooterPos, targetPos, targetVel Vec3, shotSpeed float64) Vec3 {
	if shotSpeed == 0 {
		return targetPos
	}
	velDir, targetSpeed := targetVel.Flat().Normalize()
	if targetSpeed == 0 {
		return targetPos
	}
	delta, targetToShooter := shooterPos.Sub(targetPos).Normalize()
	cosTheta := delta.Dot(velDir)

	// Law of cosines: (vs·t)² = (vt·t)² + d² - 2·d·vt·t·cosθ
	a := targetSpeed*targetSpeed - shotSpeed*shotSpeed
	b := -2.0 * targetToShooter * cosTheta * targetSpeed
	c := targetToShooter * targetToShooter

	var t float64
	if math.Abs(a) < 1e-9 {
		if b == 0 {
			return targetPos
		}
		t = -c / b
	} else {
		discrim := b*b - 4*a*c
		if discrim < 0 {
			return targetPos
		}
		discrim = math.Sqrt(discrim)
		t = (-b + discrim) / (2 * a)
		if t2 := (-b - discrim) / (2 * a); t2 > t {
			t = t2
		}
	}
	if t <= 0 {
		return targetPos
	}
	return targetPos.MA(targetSpeed*t, velDir)
}
