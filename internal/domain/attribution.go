package domain

// AttributionKind discriminates the sender attribution variant.
type AttributionKind string

const (
	// AttributionUnknown: no signature, or a valid signature from a key
	// we do not know. No sender identity can be asserted.
	AttributionUnknown AttributionKind = "unknown"
	// AttributionUnverifiedSigned: valid signature from a known contact
	// whose key material has not been verified out-of-band.
	AttributionUnverifiedSigned AttributionKind = "unverified_signed"
	// AttributionVerified: valid signature from a verified contact.
	AttributionVerified AttributionKind = "verified"
	// AttributionSignatureInvalid: a signature was present but did not
	// verify. The plaintext is still released; the AEAD already
	// guaranteed integrity of the ciphertext channel.
	AttributionSignatureInvalid AttributionKind = "signature_invalid"
)

// Attribution is the tagged sender-attribution result of a decryption.
// ContactID is set only for the UnverifiedSigned and Verified kinds.
type Attribution struct {
	Kind      AttributionKind
	ContactID string
}

func UnknownAttribution() Attribution {
	return Attribution{Kind: AttributionUnknown}
}

func UnverifiedSignedAttribution(contactID string) Attribution {
	return Attribution{Kind: AttributionUnverifiedSigned, ContactID: contactID}
}

func VerifiedAttribution(contactID string) Attribution {
	return Attribution{Kind: AttributionVerified, ContactID: contactID}
}

func SignatureInvalidAttribution() Attribution {
	return Attribution{Kind: AttributionSignatureInvalid}
}
