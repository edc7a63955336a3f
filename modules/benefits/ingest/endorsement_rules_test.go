package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validEndorsementAddRow() map[string]string {
	return map[string]string{
		hdrSerialNo:              "1",
		hdrEmployeeCode:          "E100",
		hdrInsuredName:           "Alice Smith",
		hdrRelation:              "Self",
		hdrGender:                "Female",
		hdrDateOfBirth:           "15/08/1990",
		hdrDateOfJoining:         "01/01/2024",
		hdrSumInsuredBase:        "500000",
		hdrPremiumBase:           "1200.50",
		hdrSumInsuredTopup:       "0",
		hdrPremiumTopup:          "0",
		hdrSumInsuredParent:      "0",
		hdrPremiumParent:         "0",
		hdrSumInsuredParentInLaw: "0",
		hdrPremiumParentInLaw:    "0",
		hdrUHID:                  "UH-1",
		hdrContactNumber:         "9876543210",
		hdrEmailID:               "alice@example.com",
	}
}

func validEndorsementRemoveRow() map[string]string {
	return map[string]string{
		hdrSerialNo:                 "1",
		hdrEmployeeCode:             "E100",
		hdrInsuredName:              "Alice Smith",
		hdrRelation:                 "Self",
		hdrUHID:                     "UH-1",
		hdrDateOfLeaving:            "01/06/2024",
		hdrRefundPremiumBase:        "100",
		hdrRefundPremiumTopup:       "0",
		hdrRefundPremiumParent:      "0",
		hdrRefundPremiumParentInLaw: "0",
		hdrRefundGSTBase:            "18",
		hdrRefundGSTTopup:           "0",
		hdrRefundGSTParent:          "0",
		hdrRefundGSTParentInLaw:     "0",
	}
}

func TestEndorsementRulesValidateAdd(t *testing.T) {
	rules := NewEndorsementRules()
	policyEnd := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("valid row", func(t *testing.T) {
		in, verr := rules.ValidateAdd(recordFrom(validEndorsementAddRow()), policyEnd)
		require.Nil(t, verr)
		require.Equal(t, "E100", in.EmployeeCode)
		require.Equal(t, "1200.5", in.PremiumBase.String())
		require.Equal(t, "UH-1", in.ExternalID)
	})

	t.Run("fails fast on first missing field", func(t *testing.T) {
		row := validEndorsementAddRow()
		row[hdrInsuredName] = ""
		row[hdrGender] = ""
		_, verr := rules.ValidateAdd(recordFrom(row), policyEnd)
		require.NotNil(t, verr)
		require.Equal(t, "E100: Insured Name is required", verr.Error())
	})

	t.Run("relation vocabulary", func(t *testing.T) {
		row := validEndorsementAddRow()
		row[hdrRelation] = "Cousin"
		_, verr := rules.ValidateAdd(recordFrom(row), policyEnd)
		require.NotNil(t, verr)
		require.Equal(t, "E100: Relation is not in correct format", verr.Error())
	})

	t.Run("relation is case insensitive", func(t *testing.T) {
		row := validEndorsementAddRow()
		row[hdrRelation] = "  father-in-law "
		_, verr := rules.ValidateAdd(recordFrom(row), policyEnd)
		require.Nil(t, verr)
	})

	t.Run("non numeric premium", func(t *testing.T) {
		row := validEndorsementAddRow()
		row[hdrPremiumBase] = "abc"
		_, verr := rules.ValidateAdd(recordFrom(row), policyEnd)
		require.NotNil(t, verr)
		require.Equal(t, "E100: Premium(Base) is not in correct format", verr.Error())
	})

	t.Run("joining on policy end day rejected", func(t *testing.T) {
		row := validEndorsementAddRow()
		row[hdrDateOfJoining] = "31/03/2025"
		_, verr := rules.ValidateAdd(recordFrom(row), policyEnd)
		require.NotNil(t, verr)
	})

	t.Run("unparsable joining date skips the window check", func(t *testing.T) {
		row := validEndorsementAddRow()
		row[hdrDateOfJoining] = "soon"
		in, verr := rules.ValidateAdd(recordFrom(row), policyEnd)
		require.Nil(t, verr)
		require.Equal(t, "soon", in.DateOfJoining.ISO())
	})
}

func TestEndorsementRulesValidateRemove(t *testing.T) {
	rules := NewEndorsementRules()

	t.Run("valid row", func(t *testing.T) {
		in, verr := rules.ValidateRemove(recordFrom(validEndorsementRemoveRow()))
		require.Nil(t, verr)
		require.Equal(t, "2024-06-01", in.DateOfLeaving.ISO())
		require.Equal(t, "18", in.RefundGSTBase.String())
	})

	t.Run("missing fields are reported together", func(t *testing.T) {
		row := validEndorsementRemoveRow()
		row[hdrInsuredName] = ""
		row[hdrRefundGSTBase] = ""
		_, verr := rules.ValidateRemove(recordFrom(row))
		require.NotNil(t, verr)
		require.Equal(t, "E100: Missing fields: Insured Name, Refund GST(Base)", verr.Error())
	})

	t.Run("all fields missing", func(t *testing.T) {
		_, verr := rules.ValidateRemove(recordFrom(map[string]string{}))
		require.NotNil(t, verr)
		require.Contains(t, verr.Error(), "Missing fields: S.No, Employee Code, Insured Name")
	})
}
