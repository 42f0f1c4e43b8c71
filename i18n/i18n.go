// Package i18n translates message codes for French and English clients.
package i18n

import (
	"context"
	"strings"
)

// Default is used when no supported language is requested.
const Default = "fr"

type ctxKey struct{}

var messages = map[string]map[string]string{
	"fr": {
		"required":                  "Requis",
		"must_be_positive":          "Doit être positif",
		"must_not_be_negative":      "Ne peut pas être négatif",
		"out_of_range":              "Hors limites",
		"invalid_date":              "Date invalide (AAAA-MM-JJ)",
		"invalid_email":             "E-mail invalide",
		"invalid_choice":            "Valeur non autorisée",
		"too_short":                 "Trop court",
		"invalid_json":              "Requête JSON invalide",
		"validation_failed":         "Certains champs sont invalides",
		"unauthorized":              "Authentification requise",
		"invalid_credentials":       "E-mail ou mot de passe incorrect",
		"email_taken":               "Cet e-mail est déjà utilisé",
		"not_found":                 "Introuvable",
		"job_not_found":             "Chantier introuvable",
		"report_not_found":          "Rapport introuvable",
		"invalid_status":            "Statut inconnu",
		"invalid_transition":        "Ce changement de statut n'est pas autorisé",
		"jobs_not_eligible":         "Certains chantiers sélectionnés n'ont pas le bon statut",
		"no_jobs_selected":          "Aucun chantier sélectionné",
		"payroll_already_generated": "Le rapport de paie de cette semaine a déjà été généré",
		"payroll_in_progress":       "Le rapport de paie de cette semaine est en cours de génération",
		"no_recipients":             "Aucun destinataire",
		"unsupported_format":        "Format d'export non pris en charge",
		"internal_error":            "Erreur interne",
		"method_not_allowed":        "Méthode non autorisée",
		"report_subject":            "Rapport de paie - semaine",
		"report_total":              "Total à verser",
	},
	"en": {
		"required":                  "Required",
		"must_be_positive":          "Must be positive",
		"must_not_be_negative":      "Must not be negative",
		"out_of_range":              "Out of range",
		"invalid_date":              "Invalid date (YYYY-MM-DD)",
		"invalid_email":             "Invalid e-mail",
		"invalid_choice":            "Value not allowed",
		"too_short":                 "Too short",
		"invalid_json":              "Invalid JSON body",
		"validation_failed":         "Some fields are invalid",
		"unauthorized":              "Authentication required",
		"invalid_credentials":       "Wrong e-mail or password",
		"email_taken":               "This e-mail is already registered",
		"not_found":                 "Not found",
		"job_not_found":             "Job not found",
		"report_not_found":          "Report not found",
		"invalid_status":            "Unknown status",
		"invalid_transition":        "This status change is not allowed",
		"jobs_not_eligible":         "Some selected jobs do not have the required status",
		"no_jobs_selected":          "No job selected",
		"payroll_already_generated": "This week's payroll report has already been generated",
		"payroll_in_progress":       "This week's payroll report is being generated",
		"no_recipients":             "No recipient",
		"unsupported_format":        "Unsupported export format",
		"internal_error":            "Internal error",
		"method_not_allowed":        "Method not allowed",
		"report_subject":            "Payroll report - week",
		"report_total":              "Total payout",
	},
}

// T returns the translation of code. Unknown languages fall back to French and
// unknown codes are returned as is.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[Default][code]; ok {
		return s
	}
	return code
}

// Supported reports whether lang has a catalogue.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// DetectLanguage picks the first supported language of an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		base, _, _ := strings.Cut(strings.ToLower(tag), "-")
		if Supported(base) {
			return base
		}
	}
	return Default
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the request language, or Default.
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return Default
}
