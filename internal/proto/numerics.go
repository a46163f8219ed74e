package proto

// Numeric reply codes. The verb of a numeric reply is the three-digit string.
const (
	RplWelcome  = "001" // <client> :Welcome message
	RplYourHost = "002" // <client> :Your host is...
	RplCreated  = "003" // <client> :This server was created...
	RplMyInfo   = "004" // <client> <servername> <version> <umodes> <chanmodes> <chanmodes with param>
	RplISupport = "005" // <client> 1*<TOKEN[=value]> :are supported by this server

	RplUModeIs = "221" // <client> <modes>

	RplChannelModeIs = "324" // <client> <channel> <modes> <mode params>
	RplNoTopic       = "331" // <client> <channel> :No topic is set
	RplTopic         = "332" // <client> <channel> <topic>
	RplInviting      = "341" // <client> <nick> <channel>
	RplNamReply      = "353" // <client> = <channel> :<names>
	RplEndOfNames    = "366" // <client> <channel> :End of /names reply

	RplMOTDStart = "375" // <client> :- Message of the day -
	RplMOTD      = "372" // <client> :<motd line>
	RplEndOfMOTD = "376" // <client> :- End of /MOTD -
	RplYoureOper = "381" // <client> :You are now an operator

	ErrNoSuchNick        = "401" // <client> <nick> :No such nick
	ErrNoSuchChannel     = "403" // <client> <channel> :No such channel
	ErrCannotSendToChan  = "404" // <client> <channel> :Cannot send to channel
	ErrNoRecipient       = "411" // <client> :No recipient given
	ErrNoTextToSend      = "412" // <client> :No text to send
	ErrNoMOTD            = "422" // <client> :No message of the day
	ErrNoNicknameGiven   = "431" // <client> :No nickname given
	ErrErroneusNickname  = "432" // <client> <nick> :Erroneus nickname
	ErrNicknameInUse     = "433" // <client> <nick> :Nickname is already in use
	ErrUserNotInChannel  = "441" // <client> <nick> <channel> :They aren't on that channel
	ErrNotOnChannel      = "442" // <client> <channel> :You're not on that channel
	ErrUserOnChannel     = "443" // <client> <nick> <channel> :is already on channel
	ErrNotRegistered     = "451" // <client> :You have not registered
	ErrNeedMoreParams    = "461" // <client> <command> :Not enough parameters
	ErrAlreadyRegistered = "462" // <client> :Already registered
	ErrPasswdMismatch    = "464" // <client> :Password incorrect
	ErrChannelIsFull     = "471" // <client> <channel> :Cannot join channel (+l)
	ErrInviteOnlyChan    = "473" // <client> <channel> :Cannot join channel (+i)
	ErrBadChannelKey     = "475" // <client> <channel> :Cannot join channel (+k)
	ErrNoPrivileges      = "481" // <client> :Permission denied
	ErrChanOPrivsNeeded  = "482" // <client> <channel> :You're not channel operator
	ErrUModeUnknownFlag  = "501" // <client> :Unknown MODE flag
	ErrUsersDontMatch    = "502" // <client> :Can't change mode for other users
	ErrInvalidKey        = "525" // <client> <channel> :Key is not well-formed
)
