package flow

// Specialist role names used by the built-in planners. Roles must match the
// registry exactly; the delegation codec rejects anything else.
const (
	RoleMarketAnalyst      = "chief_market_analyst"
	RolePersonaManager     = "persona_manager"
	RoleContentCreator     = "chief_content_creator"
	RoleComplianceReviewer = "compliance_reviewer"
	RoleBrandStrategist    = "brand_strategist"
	RoleAudienceResearcher = "audience_researcher"
)

// Well-known result keys the flows aggregate on. Custom planners must bind
// these keys to whichever steps produce the corresponding outputs.
const (
	// ResultDraft is the generated content draft a content plan must produce.
	ResultDraft = "draft"
	// ResultDocument is the penetration document a product document plan must produce.
	ResultDocument = "document"
)
