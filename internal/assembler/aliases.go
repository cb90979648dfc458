// Package assembler holds the low-level helpers of the entity assembler:
// alias resolution, loose-value coercion and free-text sanitizing.
package assembler

import (
	"strings"
)

// AliasTable maps a canonical field name to the keys it may arrive under.
// Keys are compared after normalization, so "shareCount", "share_count" and
// "Share-Count" are the same key.
type AliasTable map[string][]string

// Company field aliases.
var CompanyAliases = AliasTable{
	"denomination":      {"company_name", "companyName", "name", "raison_sociale"},
	"abbreviation":      {"sigle", "acronym"},
	"trade_name":        {"nom_commercial", "commercial_name"},
	"variant":           {"legal_form", "forme_juridique", "type", "company_type"},
	"capital":           {"capital_social", "share_capital", "capital_amount"},
	"capital_words":     {"capital_in_words", "capital_lettres"},
	"total_shares":      {"nombre_parts", "number_of_shares", "shares"},
	"share_unit_value":  {"valeur_nominale", "nominal_value", "share_value"},
	"purpose":           {"objet", "objet_social", "activity", "activite"},
	"duration_years":    {"duration", "duree"},
	"incorporated_at":   {"incorporation_date", "date_constitution", "created_at"},
	"projected_revenue": {"chiffre_affaires", "revenue", "expected_revenue"},
	"projections":       {"previsions"},
	"phone":             {"telephone", "tel"},
	"email":             {"mail", "e_mail"},
	"address":           {"siege", "siege_social", "registered_address", "adresse"},
}

// Address field aliases. The "city" concept arrives under either "city" or
// "ville".
var AddressAliases = AliasTable{
	"street":   {"rue", "address_line"},
	"district": {"quartier", "fokontany"},
	"commune":  {"municipality"},
	"lot":      {"lot_number"},
	"block":    {"ilot"},
	"city":     {"ville", "town"},
}

// PersonAliases covers the identity fields shared by associates and
// managers.
var PersonAliases = AliasTable{
	"name":             {"full_name", "nom", "nom_prenoms"},
	"nationality":      {"nationalite"},
	"birth_date":       {"date_of_birth", "date_naissance", "born_on"},
	"birth_place":      {"place_of_birth", "lieu_naissance", "born_in"},
	"profession":       {"occupation", "job"},
	"domicile":         {"address", "adresse", "residence"},
	"id_type":          {"identity_type", "document_type", "type_piece"},
	"id_number":        {"identity_number", "cin", "cin_number", "numero_piece"},
	"id_issued_at":     {"identity_issued_at", "cin_date", "date_delivrance"},
	"id_issued_in":     {"identity_issued_in", "cin_place", "lieu_delivrance"},
	"id_valid_until":   {"identity_valid_until", "date_validite"},
	"share_count":      {"shares", "nombre_parts", "parts"},
	"share_unit_value": {"share_value", "valeur_part"},
	"contribution":     {"apport", "contribution_amount"},
	"percentage":       {"pourcentage", "percent"},
	"father_name":      {"father", "nom_pere"},
	"mother_name":      {"mother", "nom_mere"},
	"mandate_years":    {"mandate", "mandate_duration", "duree_mandat"},
	"is_primary":       {"primary", "principal", "main"},
}

// LeaseAliases covers the lease record.
var LeaseAliases = AliasTable{
	"lessor_name":     {"bailleur", "landlord", "landlord_name", "lessor"},
	"lessor_identity": {"landlord_identity", "bailleur_cin"},
	"lessor_address":  {"landlord_address", "adresse_bailleur"},
	"lessor_phone":    {"landlord_phone", "telephone_bailleur"},
	"premises":        {"locaux", "designation"},
	"monthly_rent":    {"rent", "loyer", "loyer_mensuel"},
	"deposit_months":  {"caution", "deposit", "mois_caution"},
	"advance_months":  {"avance", "advance", "mois_avance"},
	"duration_years":  {"duration", "duree", "lease_duration"},
	"start_date":      {"date_debut", "start"},
	"end_date":        {"date_fin", "end"},
}

// Normalize folds a key to its comparison form: lower case without
// separators.
func Normalize(key string) string {
	var sb strings.Builder
	sb.Grow(len(key))
	for _, r := range strings.ToLower(strings.TrimSpace(key)) {
		switch r {
		case '_', '-', ' ', '.':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Resolve rewrites raw into a map keyed by canonical field names. The
// canonical key wins over aliases; among aliases the first listed wins.
// Unknown keys are kept under their normalized form.
func (t AliasTable) Resolve(raw map[string]any) map[string]any {
	if raw == nil {
		return map[string]any{}
	}
	byKey := make(map[string]any, len(raw))
	for k, v := range raw {
		byKey[Normalize(k)] = v
	}

	out := make(map[string]any, len(raw))
	claimed := make(map[string]struct{}, len(raw))
	for canonical, aliases := range t {
		candidates := append([]string{canonical}, aliases...)
		for _, candidate := range candidates {
			key := Normalize(candidate)
			v, ok := byKey[key]
			if !ok || isEmpty(v) {
				continue
			}
			out[canonical] = v
			claimed[key] = struct{}{}
			break
		}
	}
	for k, v := range byKey {
		if _, ok := claimed[k]; ok {
			continue
		}
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	default:
		return false
	}
}
