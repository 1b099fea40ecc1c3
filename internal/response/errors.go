package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Test-taking ───────────────────────────────────────────────────
	ErrInvalidAccessCode   ErrCode = "INVALID_ACCESS_CODE"
	ErrUnknownCandidate    ErrCode = "UNKNOWN_CANDIDATE"
	ErrTestAlreadyDone     ErrCode = "TEST_ALREADY_COMPLETED"
	ErrTestCancelled       ErrCode = "TEST_CANCELLED"
	ErrSessionNotFound     ErrCode = "SESSION_NOT_FOUND"
	ErrSessionFinalized    ErrCode = "SESSION_FINALIZED"
	ErrQuizUnresolvable    ErrCode = "QUIZ_UNRESOLVABLE"
	ErrNoQuestions         ErrCode = "NO_QUESTIONS"
	ErrAttemptAlreadyOpen  ErrCode = "ATTEMPT_ALREADY_OPEN"
	ErrClassificationState ErrCode = "CLASSIFICATION_NOT_ACTIVE"

	// ─── Import ────────────────────────────────────────────────────────
	ErrFileRequired  ErrCode = "FILE_REQUIRED"
	ErrFileTooLarge  ErrCode = "FILE_TOO_LARGE"
	ErrImportInvalid ErrCode = "IMPORT_INVALID"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
// Candidate-facing messages are in French, matching the test interface.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email ou mot de passe incorrect."
	case ErrTokenRequired:
		return "Jeton d'authentification requis."
	case ErrTokenInvalid:
		return "Jeton d'authentification invalide."
	case ErrTokenExpired:
		return "Jeton d'authentification expiré."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Vous n'avez pas accès à cette ressource."
	case ErrAdminAccessOnly:
		return "Ressource réservée aux administrateurs."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation échouée. Veuillez vérifier votre saisie."
	case ErrInvalidID:
		return "Format d'identifiant invalide."
	case ErrInvalidPayload:
		return "Corps de requête invalide."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Ressource introuvable."
	case ErrConflict:
		return "La ressource existe déjà."
	case ErrDependencyExists:
		return "Suppression impossible : la ressource est encore utilisée."

	// ─── Test-taking ───────────────────────────────────────────────────
	case ErrInvalidAccessCode:
		return "Le code d'accès saisi n'est pas valide ou le questionnaire n'est pas actif."
	case ErrUnknownCandidate:
		return "Code collaborateur inconnu."
	case ErrTestAlreadyDone:
		return "Vous avez déjà terminé ce questionnaire."
	case ErrTestCancelled:
		return "Votre test a été annulé pour suspicion de triche. Contactez votre responsable."
	case ErrSessionNotFound:
		return "Session de test introuvable."
	case ErrSessionFinalized:
		return "Cette session de test est déjà clôturée."
	case ErrQuizUnresolvable:
		return "Le questionnaire associé n'existe plus. Veuillez vous reconnecter."
	case ErrNoQuestions:
		return "Aucune question disponible pour ce questionnaire."
	case ErrAttemptAlreadyOpen:
		return "Ce test est déjà ouvert dans un autre onglet."
	case ErrClassificationState:
		return "Le jeu de classification n'est pas actif pour cette session."

	// ─── Import ────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Un fichier est requis."
	case ErrFileTooLarge:
		return "Le fichier dépasse la taille autorisée."
	case ErrImportInvalid:
		return "Le fichier importé est invalide."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Trop de requêtes. Veuillez réessayer plus tard."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Une erreur interne s'est produite."
	default:
		return "Une erreur inattendue s'est produite."
	}
}
