// Package messages holds the localized business-rule message catalog.
//
// Every user-facing detail string is looked up by a fixed symbolic key so
// handlers never hard-code text. The catalog is built once at startup from
// the configured locale and injected where needed.
package messages

import "strings"

// Message keys. Handlers reference these constants, never raw strings.
const (
	UserIsOnBanList              = "USER_IS_ON_BAN_LIST"
	UserSuccessfullyCreated      = "USER_SUCCESSFULLY_CREATED"
	UserWithUsernameExists       = "USER_WITH_USERNAME_ALREADY_EXISTS"
	UserWithNameExists           = "USER_WITH_THIS_NAME_ALREADY_EXISTS"
	AccountAlreadyExists         = "ACCOUNT_ALREADY_EXISTS"
	InvalidPassword              = "INVALID_PASSWORD"
	VerificationError            = "VERIFICATION_ERROR"
	PasswordResetSendRequest     = "PASSWORD_RESET_SEND_REQUEST"
	UserNotFoundProvidedEmail    = "USER_NOT_FOUND_PROVIDED_EMAIL"
	PasswordResetComplete        = "PASSWORD_RESET_COMPLETE"
	ProfileEdited                = "MY_PROFILE_WAS_SUCCESSFULLY_EDITED"
	UserNotFound                 = "USER_NOT_FOUND"
	CantBanYourself              = "YOU_CANT_BAN_YOURSELF"
	UserAlreadyBanned            = "USER_HAS_ALREADY_BANNED"
	UserHasBeenBanned            = "USER_HAS_BEEN_BANNED"
	UserHasBeenActivated         = "USER_HAS_BEEN_ACTIVATED"
	NoPermissionToBan            = "YOU_DONT_HAVE_PERMISSION_TO_BAN_USERS"
	UserAlreadyActivated         = "USER_ALREADY_ACTIVATED"
	NoPermissionToActivate       = "YOU_DONT_HAVE_PERMISSION_FOR_ACTIVATE_USERS"
	NewRoleMustBeSpecified       = "NEW_ROLE_MUST_BE_SPECIFIED_FOR_CHANGING_ROLE"
	RoleChangedTo                = "USERS_ROLE_HAS_BEEN_CHANGED_TO"
	NoPermissionToChangeRoles    = "YOU_DONT_HAVE_PERMISSION_FOR_CHANGE_USER_ROLES"
	InvalidActionSpecified       = "INVALID_ACTION_SPECIFIED"
	TokenNotProvided             = "TOKEN_NOT_PROVIDED"
	InvalidRefreshToken          = "INVALID_REFRESH_TOKEN"
	TokenRevoked                 = "TOKEN_REVOKED"
	InvalidEmail                 = "INVALID_EMAIL"
	EmailConfirmed               = "EMAIL_CONFIRMED"
	EmailNotConfirmed            = "EMAIL_NOT_CONFIRMED"
	EmailAlreadyConfirmed        = "EMAIL_ALREADY_CONFIRMED"
	CheckEmailConfirmation       = "CHECK_EMAIL_CONFIRMATION"
	CommentNotCreated            = "COMMENT_NOT_CREATED"
	CommentsNotFound             = "COMMENTS_NOT_FOUND"
	CommentNotFound              = "COMMENT_NOT_FOUND"
	CommentCantBeEmpty           = "COMMENT_CANT_BE_EMPTY"
	PictureUploaded              = "PICTURE_WAS_UPLOADED_TO_SERVER"
	PictureNotFound              = "PICTURE_NOT_FOUND"
	PicturesNotFound             = "PICTURES_NOT_FOUND"
	PictureNameCantBeEmpty       = "NAME_OF_PICTURE_CANT_BE_EMPTY"
	PictureDescrCantBeEmpty      = "DESCRIPTION_OF_PICTURE_CANT_BE_EMPTY"
	TooManyTags                  = "THE_NUMBER_OF_TAGS_SHOULD_NOT_EXCEED_5"
	TagTooLong                   = "THE_LENGTH_OF_TAGS_SHOULD_NOT_EXCEED_25"
	RatingMustBe1To5             = "RATING_MUST_BE_1_TO_5"
	RatingAdded                  = "RATING_SUCCESSFULLY_ADDED"
	UnableDeleteRating           = "UNABLE_DELETE_RATING"
	CantRateOwnPicture           = "YOU_CANT_RATE_YOUR_OWN_PICTURE"
	AlreadyRatedPicture          = "YOU_HAVE_ALREADY_RATED_THIS_PICTURE"
	TagnameNotFound              = "TAGNAME_NOT_FOUND"
	TagnameAlreadyExists         = "TAGNAME_ALREADY_EXIST"
	OperationsForbidden          = "OPERATIONS_FORBIDDEN"
)

const fallback = "This is not correct key for message"

var english = map[string]string{
	UserIsOnBanList:           "The user is on the ban list",
	UserSuccessfullyCreated:   "User successfully created. Check your email for confirmation",
	UserWithUsernameExists:    "User with this username already exists",
	UserWithNameExists:        "User with this name already exists!",
	AccountAlreadyExists:      "Account already exists",
	InvalidPassword:           "Invalid password",
	VerificationError:         "Verification error",
	PasswordResetSendRequest:  "Password reset request sent. We've emailed you with instructions on how to reset your password.",
	UserNotFoundProvidedEmail: "No user found with the provided email",
	PasswordResetComplete:     "Password reset complete",
	ProfileEdited:             "My profile was successfully edited",
	UserNotFound:              "User not found",
	CantBanYourself:           "You can't ban yourself",
	UserAlreadyBanned:         "User has already been banned",
	UserHasBeenBanned:         "has been banned",
	UserHasBeenActivated:      "has been activated",
	NoPermissionToBan:         "You don't have permission to ban users.",
	UserAlreadyActivated:      "User is already activated",
	NoPermissionToActivate:    "You don't have permission to activate users.",
	NewRoleMustBeSpecified:    "New role must be specified for changing the role.",
	RoleChangedTo:             "The user's role has been changed to",
	NoPermissionToChangeRoles: "You don't have permission to change user roles.",
	InvalidActionSpecified:    "Invalid action specified. Supported actions: ban, activate, change_role.",
	TokenNotProvided:          "Token not provided",
	InvalidRefreshToken:       "Invalid refresh token",
	TokenRevoked:              "Token revoked",
	InvalidEmail:              "Invalid email",
	EmailConfirmed:            "Email confirmed",
	EmailNotConfirmed:         "Email not confirmed",
	EmailAlreadyConfirmed:     "Your email is already confirmed",
	CheckEmailConfirmation:    "Check your email for confirmation",
	CommentNotCreated:         "Comment not created",
	CommentsNotFound:          "Comments not found",
	CommentNotFound:           "Comment is not found",
	CommentCantBeEmpty:        "Comment can't be empty",
	PictureUploaded:           "The picture was uploaded to the server",
	PictureNotFound:           "Picture not found",
	PicturesNotFound:          "Pictures not found",
	PictureNameCantBeEmpty:    "Name of picture can't be empty",
	PictureDescrCantBeEmpty:   "Description of picture can't be empty",
	TooManyTags:               "The number of tags should not exceed 5",
	TagTooLong:                "The length of tags should not exceed 25",
	RatingMustBe1To5:          "Rating must be between 1 and 5",
	RatingAdded:               "Rating successfully added",
	UnableDeleteRating:        "Unable to delete rating",
	CantRateOwnPicture:        "You cannot rate your own picture",
	AlreadyRatedPicture:       "You have already rated this picture",
	TagnameNotFound:           "tagname not found",
	TagnameAlreadyExists:      "tagname already exist",
	OperationsForbidden:       "Operations forbidden",
}

var ukrainian = map[string]string{
	UserIsOnBanList:           "Користувач знаходиться в бан списку",
	UserSuccessfullyCreated:   "Користувач успішно створений. Перевірте свою електронну пошту для підтвердження",
	UserWithUsernameExists:    "Користувач із таким нікнеймом вже існує",
	UserWithNameExists:        "Користувач із таким іменем вже існує",
	AccountAlreadyExists:      "Обліковий запис вже існує",
	InvalidPassword:           "Недійсний пароль",
	VerificationError:         "Помилка веріфікаціі",
	PasswordResetSendRequest:  "Запит на скидання пароля відправлено. Ми надіслали вам електронний лист з інструкціями щодо скидання пароля.",
	UserNotFoundProvidedEmail: "Не знайдено жодного користувача з указаною електронною поштою",
	PasswordResetComplete:     "Скидання пароля завершено",
	ProfileEdited:             "Мій профіль успішно відредаговано",
	UserNotFound:              "Користувач не знайдений",
	CantBanYourself:           "Ви не можете себе заборонити",
	UserAlreadyBanned:         "Користувача вже забанили",
	UserHasBeenBanned:         "було забанено",
	UserHasBeenActivated:      "був активован",
	NoPermissionToBan:         "У вас немає дозволу банити інших користувачів",
	UserAlreadyActivated:      "Користувача вже активовано",
	NoPermissionToActivate:    "У вас немає дозволу активувати інших користувачів",
	NewRoleMustBeSpecified:    "Для зміни ролі необхідно вказати нову роль.",
	RoleChangedTo:             "Роль користувача змінено на",
	NoPermissionToChangeRoles: "Ви не маєте дозволу змінювати ролі користувачів.",
	InvalidActionSpecified:    "Вказана недійсна дія. Підтримувані дії: бан, активація, зміна ролі.",
	TokenNotProvided:          "Токен не надано",
	InvalidRefreshToken:       "Недійсний рефреш токен",
	TokenRevoked:              "Токен відкликано",
	InvalidEmail:              "Недійсна електронна адреса",
	EmailConfirmed:            "Електронна адреса підтверджена",
	EmailNotConfirmed:         "Електронна пошта не підтверджена",
	EmailAlreadyConfirmed:     "Ваша електронна адреса вже підтверджена",
	CheckEmailConfirmation:    "Перевірте свою електронну пошту для підтвердження",
	CommentNotCreated:         "Коментар не створено",
	CommentsNotFound:          "Коментарі не знайдено",
	CommentNotFound:           "Коментар не знайдено",
	CommentCantBeEmpty:        "Коментар не може бути порожнім",
	PictureUploaded:           "Світлина була завантажена на сервер",
	PictureNotFound:           "Світлина не знайдено",
	PicturesNotFound:          "Жодної світлини не знайдено",
	PictureNameCantBeEmpty:    "Назва світлини не може бути пустою",
	PictureDescrCantBeEmpty:   "Опис світлини не може бути порожнім",
	TooManyTags:               "Кількість тегів не повинна перевищувати 5",
	TagTooLong:                "Довжина тегів не повинна перевищувати 25",
	RatingMustBe1To5:          "Рейтинг має бути від 1 до 5",
	RatingAdded:               "Рейтинг успішно додано",
	UnableDeleteRating:        "Не вдалося видалити оцінку",
	CantRateOwnPicture:        "Ви не можете оцінити власне зображення",
	AlreadyRatedPicture:       "Ви вже оцінили це зображення",
	TagnameNotFound:           "тег не знайдено",
	TagnameAlreadyExists:      "тег вже існує",
	OperationsForbidden:       "Операції заборонені",
}

// Catalog resolves symbolic keys to localized text.
type Catalog struct {
	table map[string]string
}

// New returns a catalog for the given locale ("en" or "ua"). Anything else
// falls back to English.
func New(locale string) *Catalog {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "ua", "uk":
		return &Catalog{table: ukrainian}
	default:
		return &Catalog{table: english}
	}
}

// Get returns the localized message for key, or a fixed fallback string for
// unknown keys.
func (c *Catalog) Get(key string) string {
	if msg, ok := c.table[key]; ok {
		return msg
	}
	return fallback
}
