package service

import (
	"strings"

	"cv-portfolio/internal/domain"
)

const qualityScale = 10.0

// calculateQualityScore aplica la rubrica de completitud del portfolio sobre 10 puntos.
func calculateQualityScore(p *domain.PortfolioContent) float64 {
	points := 0.0

	if p.Hero != nil {
		if strings.TrimSpace(p.Hero.Headline) != "" {
			points++
		}
		if strings.TrimSpace(p.Hero.ValueProposition) != "" {
			points++
		}
	}

	if p.About != nil {
		if strings.TrimSpace(p.About.MainContent) != "" {
			points++
		}
		if len(p.About.KeyHighlights) >= 2 {
			points++
		}
	}

	if len(p.Experience) > 0 {
		points++
		hasAchievements, hasImpact := false, false
		for _, e := range p.Experience {
			if len(e.KeyAchievements) > 0 {
				hasAchievements = true
			}
			if strings.TrimSpace(e.ImpactSummary) != "" {
				hasImpact = true
			}
		}
		if hasAchievements {
			points++
		}
		if hasImpact {
			points++
		}
	}

	if p.Skills != nil {
		if len(p.Skills.SkillCategories) > 0 {
			points++
		}
		if len(p.Skills.TopSkills) > 0 {
			points++
		}
	}

	if p.Contact != nil && (strings.TrimSpace(p.Contact.Email) != "" || strings.TrimSpace(p.Contact.Phone) != "") {
		points++
	}

	return domain.ClampScore(points / qualityScale)
}
