package types

type ContractExecutionStatus uint8

const (
	SUCCESS ContractExecutionStatus = iota

	// Block invalidating errors
	TX_LOOKUP_FAILURE
	TX_NOT_VALID_FOR_BLOCK
	TX_PERMISSION_DENIED
	TX_NOT_ENOUGH_CHARGE
	TX_CHARGE_LIMIT_TOO_HIGH

	// Normal errors
	INSUFFICIENT_AVAILABLE_FUNDS
	CONTRACT_NAME_PARSE_FAILURE
	CONTRACT_LOOKUP_FAILURE
	ACTION_LOOKUP_FAILURE
	CONTRACT_EXECUTION_FAILURE
	TRANSFER_FAILURE
	INSUFFICIENT_CHARGE

	// Fatal errors
	NOT_RUN
	INTERNAL_ERROR
	INEXPLICABLE_FAILURE
)

type StatusCategory uint8

const (
	CATEGORY_SUCCESS StatusCategory = iota
	CATEGORY_NORMAL_ERROR
	CATEGORY_INTERNAL_ERROR
	CATEGORY_BLOCK_INVALIDATING_ERROR
)

func (s ContractExecutionStatus) Category() StatusCategory {
	switch s {
	case SUCCESS:
		return CATEGORY_SUCCESS
	case TX_LOOKUP_FAILURE, TX_NOT_VALID_FOR_BLOCK, TX_PERMISSION_DENIED,
		TX_NOT_ENOUGH_CHARGE, TX_CHARGE_LIMIT_TOO_HIGH:
		return CATEGORY_BLOCK_INVALIDATING_ERROR
	case INSUFFICIENT_AVAILABLE_FUNDS, CONTRACT_NAME_PARSE_FAILURE, CONTRACT_LOOKUP_FAILURE,
		ACTION_LOOKUP_FAILURE, CONTRACT_EXECUTION_FAILURE, TRANSFER_FAILURE, INSUFFICIENT_CHARGE:
		return CATEGORY_NORMAL_ERROR
	}
	// NOT_RUN, INTERNAL_ERROR, INEXPLICABLE_FAILURE and anything unknown
	return CATEGORY_INTERNAL_ERROR
}

func (s ContractExecutionStatus) String() string {
	return StatusToStr(s)
}

func StatusToStr(status ContractExecutionStatus) string {
	switch status {
	case SUCCESS:
		return "Success"
	case TX_LOOKUP_FAILURE:
		return "Unable to lookup transaction"
	case TX_NOT_VALID_FOR_BLOCK:
		return "Transaction not valid for the current block"
	case TX_PERMISSION_DENIED:
		return "Permission denied"
	case TX_NOT_ENOUGH_CHARGE:
		return "Not enough charge"
	case TX_CHARGE_LIMIT_TOO_HIGH:
		return "Charge limit too high"
	case INSUFFICIENT_AVAILABLE_FUNDS:
		return "Insufficient available funds"
	case CONTRACT_NAME_PARSE_FAILURE:
		return "Unable to parse contract name"
	case CONTRACT_LOOKUP_FAILURE:
		return "Unable to lookup contract"
	case ACTION_LOOKUP_FAILURE:
		return "Unable to lookup action"
	case CONTRACT_EXECUTION_FAILURE:
		return "Contract execution failure"
	case TRANSFER_FAILURE:
		return "Unable to perform transfer"
	case INSUFFICIENT_CHARGE:
		return "Insufficient charge"
	case NOT_RUN:
		return "Not Run"
	case INTERNAL_ERROR:
		return "Internal Error"
	case INEXPLICABLE_FAILURE:
		return "Inexplicable Error"
	}
	return "Unknown"
}

func (c StatusCategory) String() string {
	switch c {
	case CATEGORY_SUCCESS:
		return "success"
	case CATEGORY_NORMAL_ERROR:
		return "normal-error"
	case CATEGORY_INTERNAL_ERROR:
		return "internal-error"
	case CATEGORY_BLOCK_INVALIDATING_ERROR:
		return "block-invalidating-error"
	}
	return "unknown"
}
