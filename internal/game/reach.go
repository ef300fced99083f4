package game

// Count returns how many enemies a tier strikes; 0 means unbounded.
func (r Reach) Count() int {
	switch r {
	case ReachSingle:
		return 1
	case ReachDouble:
		return 2
	case ReachTriple:
		return 3
	default:
		return 0
	}
}

// tierForCount buckets a target count back into a tier.
func tierForCount(n int) Reach {
	switch {
	case n <= 1:
		return ReachSingle
	case n == 2:
		return ReachDouble
	case n == 3:
		return ReachTriple
	default:
		return ReachAll
	}
}

// ResolveReach turns a declared reach into a concrete tier given the weapon's
// tier. A bare-handed player fights at single reach.
func ResolveReach(declared Reach, weapon *Weapon) Reach {
	weaponTier := ReachSingle
	if weapon != nil {
		weaponTier = weapon.Reach
	}
	switch declared {
	case ReachWeapon:
		return weaponTier
	case ReachDoubleWeapon:
		if weaponTier == ReachAll {
			return ReachAll
		}
		return tierForCount(weaponTier.Count() * 2)
	default:
		return declared
	}
}

// CombineReach merges two tiers by taking the wider one.
func CombineReach(a, b Reach) Reach {
	if a > b {
		return a
	}
	return b
}

// SelectTargets picks the enemies a tier covers: a contiguous slice starting
// at base (front-most when base is nil), clamped to the roster. ReachAll
// always returns the whole list.
func SelectTargets(tier Reach, enemies []*Enemy, base *Enemy) []*Enemy {
	if len(enemies) == 0 {
		return nil
	}
	if tier == ReachAll {
		out := make([]*Enemy, len(enemies))
		copy(out, enemies)
		return out
	}
	start := 0
	if base != nil {
		for i, e := range enemies {
			if e.ID == base.ID {
				start = i
				break
			}
		}
	}
	end := start + tier.Count()
	if end > len(enemies) {
		end = len(enemies)
	}
	out := make([]*Enemy, end-start)
	copy(out, enemies[start:end])
	return out
}
