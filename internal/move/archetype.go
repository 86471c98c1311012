package move

import "strings"

// Fast-move archetypes.
const (
	HeavyDamage  = "Heavy Damage"
	FastCharge   = "Fast Charge"
	Multipurpose = "Multipurpose"
	LowQuality   = "Low Quality"
	General      = "General"
)

// Charged-move descriptors and archetype words.
const (
	Boost          = "Boost"
	SelfDebuff     = "Self-Debuff"
	SelfDebuffSpam = "Self-Debuff Spam"
	Debuff         = "Debuff"
	Nuke           = "Nuke"
	HighEnergy     = "High Energy"
	Spam           = "Spam"
)

// Threshold constants for charged-move classification.
const (
	selfDebuffSpamEnergy = 45
	highEnergy           = 50
	nukeEnergy           = 60
	nukeDPE              = 1.5
	heavyNukeDPE         = 1.75
)

var fastStyleClasses = map[string]string{
	FastCharge:   "spam",
	HeavyDamage:  "nuke",
	Multipurpose: "high-energy",
	LowQuality:   "low-quality",
	General:      "general",
}

// ClassifyFast labels a fast move by its damage and energy per turn.
// Rules are checked in order and the first match wins.
func ClassifyFast(dpt, ept float64) string {
	switch {
	case dpt >= 3.5 && dpt > ept:
		return HeavyDamage
	case ept >= 3.5 && ept > dpt:
		return FastCharge
	case (dpt >= 4 && ept >= 3) || (dpt >= 3 && ept >= 4):
		return Multipurpose
	case (dpt < 3 && ept <= 3) || (dpt <= 3 && ept < 3):
		return LowQuality
	default:
		return General
	}
}

// FastArchetype classifies a catalog fast move.
func FastArchetype(m *FastMove) string {
	return ClassifyFast(m.DPT(), m.EPT())
}

// FastStyleClass maps a fast-move archetype to its style tag.
func FastStyleClass(archetype string) string {
	return fastStyleClasses[archetype]
}

// buffDescriptor resolves the buff half of a charged-move label. The second
// result is true when the label is final and no energy rule applies.
func buffDescriptor(m *ChargedMove) (string, bool) {
	if !m.HasBuffs() {
		return "", false
	}
	if m.BuffTarget != BuffTargetSelf {
		return Debuff, false
	}

	var raises, lowers bool
	for _, v := range m.Buffs {
		if v > 0 {
			raises = true
		}
		if v < 0 {
			lowers = true
		}
	}
	switch {
	case raises:
		return Boost, false
	case lowers && m.Energy < selfDebuffSpamEnergy:
		return SelfDebuffSpam, true
	case lowers:
		return SelfDebuff, false
	default:
		// self-targeted buffs that are all zero
		return "", false
	}
}

// ChargedArchetype labels a charged move from its buffs, energy and DPE.
func ChargedArchetype(m *ChargedMove) string {
	descriptor, final := buffDescriptor(m)
	if final {
		return descriptor
	}

	dpe := m.DPE()
	switch {
	case (m.Energy > nukeEnergy && dpe > nukeDPE) || (m.Energy > highEnergy && dpe > heavyNukeDPE):
		return strings.TrimSpace(descriptor + " " + Nuke)
	case m.Energy > highEnergy:
		return strings.TrimSpace(HighEnergy + " " + descriptor)
	case descriptor != "":
		return descriptor
	default:
		return General
	}
}

// ChargedStyleClass maps a charged-move label to its style tag by substring,
// checked in priority order. Unmatched labels get no class.
func ChargedStyleClass(archetype string) string {
	switch {
	case strings.Contains(archetype, Boost):
		return "self-debuff"
	case strings.Contains(archetype, Spam):
		return "spam"
	case strings.Contains(archetype, HighEnergy):
		return "high-energy"
	case strings.Contains(archetype, Nuke):
		return "nuke"
	case strings.Contains(archetype, Debuff):
		return "debuff"
	default:
		return ""
	}
}
