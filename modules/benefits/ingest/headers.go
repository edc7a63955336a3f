package ingest

// Upload header names are a versioned contract with the spreadsheet
// templates handed to HR admins, parenthetical format hints included.
// Matching is exact after whitespace trimming; renaming any of these
// breaks every template already in circulation.
const (
	hdrSerialNo      = "S.No"
	hdrEmployeeCode  = "Employee Code"
	hdrFirstName     = "First Name"
	hdrLastName      = "Last Name"
	hdrEmail         = "Email"
	hdrNewEmail      = "New Email"
	hdrGender        = "Gender"
	hdrDateOfBirth   = "Date of Birth(dd-mm-yyyy)"
	hdrDateOfJoining = "Date of Joining(dd-mm-yyyy)"
	hdrDateOfLeaving = "Date of Leaving(dd-mm-yyyy)"
	hdrContactNumber = "Contact Number"
	hdrDesignation   = "Designation"
	hdrGrade         = "Grade"
	hdrEntityCode    = "Entity Code"

	hdrInsuredName = "Insured Name"
	hdrRelation    = "Relation"
	hdrUHID        = "UHID"
	hdrEmailID     = "Email ID"

	hdrSumInsuredBase        = "Sum Insured(Base)"
	hdrPremiumBase           = "Premium(Base)"
	hdrSumInsuredTopup       = "Sum Insured(Topup)"
	hdrPremiumTopup          = "Premium(Topup)"
	hdrSumInsuredParent      = "Sum Insured(Parent)"
	hdrPremiumParent         = "Premium(Parent)"
	hdrSumInsuredParentInLaw = "Sum Insured(Parent-In-Law)"
	hdrPremiumParentInLaw    = "Premium(Parent-In-Law)"

	hdrRefundPremiumBase        = "Refund Premium(Base)"
	hdrRefundPremiumTopup       = "Refund Premium(Topup)"
	hdrRefundPremiumParent      = "Refund Premium(Parent)"
	hdrRefundPremiumParentInLaw = "Refund Premium(Parent-In-Law)"
	hdrRefundGSTBase            = "Refund GST(Base)"
	hdrRefundGSTTopup           = "Refund GST(Topup)"
	hdrRefundGSTParent          = "Refund GST(Parent)"
	hdrRefundGSTParentInLaw     = "Refund GST(Parent-In-Law)"
)

// endorsementAddRequired lists the fields that must be non-empty on an
// endorsement addition row. Zero is a valid value for the numeric ones;
// only empty strings are rejected.
var endorsementAddRequired = []string{
	hdrSerialNo,
	hdrEmployeeCode,
	hdrInsuredName,
	hdrRelation,
	hdrGender,
	hdrDateOfBirth,
	hdrDateOfJoining,
	hdrSumInsuredBase,
	hdrPremiumBase,
	hdrSumInsuredTopup,
	hdrPremiumTopup,
	hdrSumInsuredParent,
	hdrPremiumParent,
	hdrSumInsuredParentInLaw,
	hdrPremiumParentInLaw,
	hdrUHID,
	hdrContactNumber,
	hdrEmailID,
}

// endorsementRemoveRequired: missing entries are collected and reported
// together in one combined message, not fail-fast.
var endorsementRemoveRequired = []string{
	hdrSerialNo,
	hdrEmployeeCode,
	hdrInsuredName,
	hdrRelation,
	hdrDateOfLeaving,
	hdrRefundPremiumBase,
	hdrRefundPremiumTopup,
	hdrRefundPremiumParent,
	hdrRefundPremiumParentInLaw,
	hdrRefundGSTBase,
	hdrRefundGSTTopup,
	hdrRefundGSTParent,
	hdrRefundGSTParentInLaw,
}
