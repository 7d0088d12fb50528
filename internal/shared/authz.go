package shared

// Permissions declared for RBAC.
const (
	PermPatientsView = "patients.view"
	PermPatientsEdit = "patients.edit"

	PermRegistrationsView = "registrations.view"
	PermRegistrationsEdit = "registrations.edit"

	PermAdmissionsView = "admissions.view"
	PermAdmissionsEdit = "admissions.edit"

	PermServicesView = "services.view"
	PermServicesEdit = "services.edit"

	PermBillingView     = "billing.view"
	PermBillingFinalize = "billing.finalize"

	PermPaymentsView   = "payments.view"
	PermPaymentsRecord = "payments.record"
	PermPaymentsRefund = "payments.refund"
)

// ClinicalScopes lists permissions for patient-facing modules.
func ClinicalScopes() []string {
	return []string{
		PermPatientsView,
		PermPatientsEdit,
		PermRegistrationsView,
		PermRegistrationsEdit,
		PermAdmissionsView,
		PermAdmissionsEdit,
		PermServicesView,
		PermServicesEdit,
	}
}

// BillingScopes lists permissions for the billing and payments modules.
func BillingScopes() []string {
	return []string{
		PermBillingView,
		PermBillingFinalize,
		PermPaymentsView,
		PermPaymentsRecord,
		PermPaymentsRefund,
	}
}
