package auth

import (
	"driver-rewards/internal/models"
)

// Capability names a group of routes a role service exposes on top of the common
// account routes (register, login, logout, me, profile, password).
type Capability string

const (
	CapApply         Capability = "apply"          // submit and list own applications
	CapBrowseAds     Capability = "browse_ads"     // list every sponsor's ads
	CapSponsorList   Capability = "sponsor_list"   // sponsor directory
	CapOwnPoints     Capability = "own_points"     // own balance, ledger, affiliation
	CapShop          Capability = "shop"           // affiliated sponsor's catalog
	CapManageAds     Capability = "manage_ads"     // create, list, delete own ads
	CapReview        Capability = "review"         // review applications addressed to self
	CapManagePoints  Capability = "manage_points"  // org drivers and their ledgers
	CapManageCatalog Capability = "manage_catalog" // curate own catalog
	CapMarketplace   Capability = "marketplace"    // external item search
	CapUsers         Capability = "users"          // platform-wide user listing
	CapStats         Capability = "stats"          // platform statistics
)

// Capabilities is the role capability table
var Capabilities = map[models.Role][]Capability{
	models.RoleDriver: {
		CapApply, CapBrowseAds, CapSponsorList, CapOwnPoints, CapShop,
	},
	models.RoleSponsor: {
		CapManageAds, CapReview, CapManagePoints, CapManageCatalog, CapMarketplace,
	},
	models.RoleAdmin: {
		CapUsers, CapStats,
	},
}

// Can reports whether role is granted capability
func Can(role models.Role, capability Capability) bool {
	for _, c := range Capabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}
