package errors

import "strconv"

// FxCode is a remote filesystem protocol status code. The values correspond
// to the SSH_FX_* codes defined by the SFTP standard, not to any particular
// client library.
type FxCode uint32

const (
	FxOK                FxCode = 0
	FxEOF               FxCode = 1
	FxNoSuchFile        FxCode = 2
	FxPermissionDenied  FxCode = 3
	FxFailure           FxCode = 4
	FxBadMessage        FxCode = 5
	FxNoConnection      FxCode = 6
	FxConnectionLost    FxCode = 7
	FxOpUnsupported     FxCode = 8
	FxInvalidHandle     FxCode = 9
	FxNoSuchPath        FxCode = 10
	FxFileAlreadyExists FxCode = 11
	FxWriteProtect      FxCode = 12
	FxNoMedia           FxCode = 13
	FxNoSpaceOnFS       FxCode = 14
	FxQuotaExceeded     FxCode = 15
	FxUnknownPrincipal  FxCode = 16
	FxLockConflict      FxCode = 17
	FxDirNotEmpty       FxCode = 18
	FxNotADirectory     FxCode = 19
	FxInvalidFilename   FxCode = 20
	FxLinkLoop          FxCode = 21
)

var fxNames = map[FxCode]string{
	FxOK:                "FX_OK",
	FxEOF:               "FX_EOF",
	FxNoSuchFile:        "FX_NO_SUCH_FILE",
	FxPermissionDenied:  "FX_PERMISSION_DENIED",
	FxFailure:           "FX_FAILURE",
	FxBadMessage:        "FX_BAD_MESSAGE",
	FxNoConnection:      "FX_NO_CONNECTION",
	FxConnectionLost:    "FX_CONNECTION_LOST",
	FxOpUnsupported:     "FX_OP_UNSUPPORTED",
	FxInvalidHandle:     "FX_INVALID_HANDLE",
	FxNoSuchPath:        "FX_NO_SUCH_PATH",
	FxFileAlreadyExists: "FX_FILE_ALREADY_EXISTS",
	FxWriteProtect:      "FX_WRITE_PROTECT",
	FxNoMedia:           "FX_NO_MEDIA",
	FxNoSpaceOnFS:       "FX_NO_SPACE_ON_FILESYSTEM",
	FxQuotaExceeded:     "FX_QUOTA_EXCEEDED",
	FxUnknownPrincipal:  "FX_UNKNOWN_PRINCIPAL",
	FxLockConflict:      "FX_LOCK_CONFLICT",
	FxDirNotEmpty:       "FX_DIR_NOT_EMPTY",
	FxNotADirectory:     "FX_NOT_A_DIRECTORY",
	FxInvalidFilename:   "FX_INVALID_FILENAME",
	FxLinkLoop:          "FX_LINK_LOOP",
}

func (c FxCode) String() string {
	if name, ok := fxNames[c]; ok {
		return name
	}
	return "FX_" + strconv.FormatUint(uint64(c), 10)
}
